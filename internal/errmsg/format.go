// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants, grouped by domain.
const (
	// Queue editing
	OpQueueAdd    Op = "add to queue"
	OpQueueRemove Op = "remove from queue"
	OpQueueMove   Op = "move queue item"
	OpQueueClear  Op = "clear queue"
	OpQueueJump   Op = "jump to track"

	// Navigation
	OpQueueNext     Op = "skip to next track"
	OpQueuePrevious Op = "go to previous track"
	OpQueueAdvance  Op = "advance queue"

	// Modes
	OpShuffle Op = "change shuffle"
	OpRepeat  Op = "change repeat mode"

	// Persistence
	OpQueueLoad Op = "load queue"
	OpQueueSave Op = "save queue"

	// Files
	OpFileScan Op = "scan folder"
	OpFileLoad Op = "load file"

	// Initialization
	OpConfigLoad Op = "load config"
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// Error wraps err so that its message reads like Format while errors.Is and
// errors.As still see the cause.
func Error(op Op, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
