package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"

	"github.com/llehouerou/unplayer/internal/queue"
)

const (
	maxTitleWidth = 40
	maxFieldWidth = 28
	currentMarker = "▶"
)

var currentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))

func renderQueue(w io.Writer, snap queue.Snapshot, savedAt time.Time) {
	if len(snap.Tracks) == 0 {
		fmt.Fprintln(w, "Queue is empty")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"", "#", "Title", "Artist", "Album", "Duration"})

	var total time.Duration
	for i, tr := range snap.Tracks {
		total += tr.Duration
		marker := ""
		if i == snap.CurrentIndex {
			marker = currentStyle.Render(currentMarker)
		}
		t.AppendRow(table.Row{
			marker,
			i + 1,
			truncate(trackTitle(tr), maxTitleWidth),
			truncate(tr.Artist, maxFieldWidth),
			truncate(tr.Album, maxFieldWidth),
			formatDuration(tr.Duration),
		})
	}
	t.AppendFooter(table.Row{"", "", humanize.Comma(int64(len(snap.Tracks))) + " tracks", "", "", formatDuration(total)})
	t.Render()

	status := fmt.Sprintf("Shuffle %s, repeat %s", onOff(snap.Shuffle), snap.RepeatMode)
	if snap.Shuffle {
		status += fmt.Sprintf(", %d left in cycle", len(snap.NotPlayed))
	}
	if !savedAt.IsZero() {
		status += ", saved " + humanize.Time(savedAt)
	}
	fmt.Fprintln(w, status)
}

func printCurrent(w io.Writer, snap queue.Snapshot) {
	if snap.CurrentIndex < 0 || snap.CurrentIndex >= len(snap.Tracks) {
		fmt.Fprintln(w, "Queue is empty")
		return
	}
	tr := snap.Tracks[snap.CurrentIndex]
	line := fmt.Sprintf("%s %d/%d %s - %s", currentMarker, snap.CurrentIndex+1, len(snap.Tracks),
		trackTitle(tr), tr.Artist)
	if tr.Duration > 0 {
		line += " (" + formatDuration(tr.Duration) + ")"
	}
	fmt.Fprintln(w, line)
}

func trackTitle(tr queue.Track) string {
	if tr.Pending {
		return tr.DisplayTitle() + " (loading)"
	}
	return tr.DisplayTitle()
}

func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

// formatDuration renders m:ss, or h:mm:ss past an hour.
func formatDuration(d time.Duration) string {
	secs := int(d / time.Second)
	h, m, s := secs/3600, secs/60%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
