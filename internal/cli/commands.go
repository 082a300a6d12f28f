package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/llehouerou/unplayer/internal/errmsg"
	"github.com/llehouerou/unplayer/internal/metadata"
	"github.com/llehouerou/unplayer/internal/queue"
)

var errNoMusicFiles = errors.New("no music files found")

func (r *runner) addCmd() *cobra.Command {
	var (
		clearFirst bool
		play       int
	)
	cmd := &cobra.Command{
		Use:   "add PATH...",
		Short: "Append files or folders to the queue",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.Flags().BoolVar(&clearFirst, "clear", false, "replace the queue instead of appending")
	cmd.Flags().IntVar(&play, "play", 0, "make the Nth added track current")

	cmd.RunE = r.withApp(func(ctx context.Context, a *app, args []string) error {
		locators, err := expandPaths(args)
		if err != nil {
			return errmsg.Error(errmsg.OpFileScan, err)
		}
		if len(locators) == 0 {
			return errmsg.Error(errmsg.OpQueueAdd, errNoMusicFiles)
		}

		opts := queue.AddOptions{Clear: clearFirst, SetCurrent: -1}
		if play != 0 {
			if play < 1 || play > len(locators) {
				return errmsg.Error(errmsg.OpQueueAdd,
					fmt.Errorf("--play %d outside the %d added tracks", play, len(locators)))
			}
			start := a.session.Len()
			if clearFirst {
				start = 0
			}
			opts.SetCurrent = start + oneBased(play)
		}
		if err := a.session.AddTracks(locators, opts); err != nil {
			return errmsg.Error(errmsg.OpQueueAdd, err)
		}

		a.settle(ctx)
		fmt.Fprintf(a.out, "Added %d tracks\n", len(locators))
		a.printCurrent()
		return nil
	})
	return cmd
}

// expandPaths resolves the arguments of add into locators. Directories are
// walked for music files in lexical order; anything else is taken verbatim.
func expandPaths(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			out = append(out, absPath(arg))
			continue
		}

		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && metadata.IsMusicFile(path) {
				found = append(found, absPath(path))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		slices.Sort(found)
		out = append(out, found...)
	}
	return out, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func (r *runner) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the queue",
		Args:    cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, a *app, _ []string) error {
			a.settle(ctx)
			renderQueue(a.out, a.session.Snapshot(), a.savedAt)
			return nil
		}),
	}
}

func (r *runner) nextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Skip to the next track",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, a *app, _ []string) error {
			if err := a.session.Next(); err != nil {
				return errmsg.Error(errmsg.OpQueueNext, err)
			}
			a.printCurrent()
			return nil
		}),
	}
}

func (r *runner) prevCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "prev",
		Aliases: []string{"previous"},
		Short:   "Go back to the previous track",
		Args:    cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, a *app, _ []string) error {
			if err := a.session.Previous(); err != nil {
				return errmsg.Error(errmsg.OpQueuePrevious, err)
			}
			a.printCurrent()
			return nil
		}),
	}
}

func (r *runner) endCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end",
		Short: "Advance as if the current track finished playing",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, a *app, _ []string) error {
			advanced, err := a.session.AdvanceOnEndOfTrack()
			if err != nil {
				return errmsg.Error(errmsg.OpQueueAdvance, err)
			}
			if !advanced {
				fmt.Fprintln(a.out, "End of queue, playback stopped")
				return nil
			}
			a.printCurrent()
			return nil
		}),
	}
}

func (r *runner) jumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jump N",
		Short: "Make the Nth track current",
		Args:  cobra.ExactArgs(1),
		RunE: r.withApp(func(ctx context.Context, a *app, args []string) error {
			index, err := parsePosition(args[0])
			if err != nil {
				return errmsg.Error(errmsg.OpQueueJump, err)
			}
			if err := a.session.JumpTo(index); err != nil {
				return errmsg.Error(errmsg.OpQueueJump, err)
			}
			a.printCurrent()
			return nil
		}),
	}
}

func (r *runner) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove N...",
		Aliases: []string{"rm"},
		Short:   "Remove tracks by position",
		Args:    cobra.MinimumNArgs(1),
		RunE: r.withApp(func(ctx context.Context, a *app, args []string) error {
			var parseErr error
			indexes := lo.Map(args, func(s string, _ int) int {
				index, err := parsePosition(s)
				if err != nil && parseErr == nil {
					parseErr = err
				}
				return index
			})
			if parseErr != nil {
				return errmsg.Error(errmsg.OpQueueRemove, parseErr)
			}
			indexes = lo.Uniq(indexes)

			if err := a.session.RemoveTracks(indexes); err != nil {
				return errmsg.Error(errmsg.OpQueueRemove, err)
			}
			fmt.Fprintf(a.out, "Removed %d tracks\n", len(indexes))
			a.printCurrent()
			return nil
		}),
	}
}

func (r *runner) moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "move FROM TO",
		Aliases: []string{"mv"},
		Short:   "Move a track to another position",
		Args:    cobra.ExactArgs(2),
		RunE: r.withApp(func(ctx context.Context, a *app, args []string) error {
			from, err := parsePosition(args[0])
			if err != nil {
				return errmsg.Error(errmsg.OpQueueMove, err)
			}
			to, err := parsePosition(args[1])
			if err != nil {
				return errmsg.Error(errmsg.OpQueueMove, err)
			}
			if err := a.session.Move(from, to); err != nil {
				return errmsg.Error(errmsg.OpQueueMove, err)
			}
			a.printCurrent()
			return nil
		}),
	}
}

func (r *runner) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every track",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, a *app, _ []string) error {
			if err := a.session.Clear(); err != nil {
				return errmsg.Error(errmsg.OpQueueClear, err)
			}
			fmt.Fprintln(a.out, "Queue cleared")
			return nil
		}),
	}
}

func (r *runner) shuffleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "shuffle [on|off|toggle]",
		Short:     "Change shuffle (toggles without an argument)",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off", "toggle"},
		RunE: r.withApp(func(ctx context.Context, a *app, args []string) error {
			var err error
			switch lo.FirstOr(args, "toggle") {
			case "on":
				err = a.session.SetShuffle(true)
			case "off":
				err = a.session.SetShuffle(false)
			default:
				_, err = a.session.ToggleShuffle()
			}
			if err != nil {
				return errmsg.Error(errmsg.OpShuffle, err)
			}
			fmt.Fprintf(a.out, "Shuffle %s\n", onOff(a.session.Shuffle()))
			return nil
		}),
	}
}

func (r *runner) repeatCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "repeat [off|all|one]",
		Short:     "Change the repeat mode (cycles without an argument)",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"off", "all", "one"},
		RunE: r.withApp(func(ctx context.Context, a *app, args []string) error {
			if len(args) == 0 {
				if _, err := a.session.CycleRepeatMode(); err != nil {
					return errmsg.Error(errmsg.OpRepeat, err)
				}
			} else {
				mode, err := queue.ParseRepeatMode(args[0])
				if err != nil {
					return errmsg.Error(errmsg.OpRepeat, err)
				}
				if err := a.session.SetRepeatMode(mode); err != nil {
					return errmsg.Error(errmsg.OpRepeat, err)
				}
			}
			fmt.Fprintf(a.out, "Repeat %s\n", a.session.RepeatMode())
			return nil
		}),
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
