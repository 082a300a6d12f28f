package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/llehouerou/unplayer/internal/config"
	"github.com/llehouerou/unplayer/internal/errmsg"
	"github.com/llehouerou/unplayer/internal/queue"
	"github.com/llehouerou/unplayer/internal/state"
)

// Options injects the collaborators of a run. Zero values select the
// defaults: os streams, the SQLite store, the file loader and config files.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Store  state.Interface
	Loader queue.Loader
	Random queue.RandomSource
	Config *config.Config
}

type rootFlags struct {
	configPath string
	statePath  string
	logLevel   string
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, opts Options) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	cmd := NewRootCmd(&opts)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(opts.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// NewRootCmd builds the command tree.
func NewRootCmd(opts *Options) *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "unplayer",
		Short:         "Manage a persistent playback queue",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default: ~/.config/unplayer/config.toml)")
	pf.StringVar(&flags.statePath, "state", "", "state database path")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	r := &runner{opts: opts, flags: flags}
	root.AddCommand(
		r.addCmd(),
		r.listCmd(),
		r.nextCmd(),
		r.prevCmd(),
		r.endCmd(),
		r.jumpCmd(),
		r.removeCmd(),
		r.moveCmd(),
		r.clearCmd(),
		r.shuffleCmd(),
		r.repeatCmd(),
	)
	return root
}

type runner struct {
	opts  *Options
	flags *rootFlags
}

func (r *runner) config() (*config.Config, error) {
	cfg := r.opts.Config
	if cfg == nil {
		var err error
		if r.flags.configPath != "" {
			cfg, err = config.LoadFrom(r.flags.configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return nil, errmsg.Error(errmsg.OpConfigLoad, err)
		}
	}
	if r.flags.statePath != "" {
		cfg.StatePath = r.flags.statePath
	}
	if r.flags.logLevel != "" {
		cfg.LogLevel = r.flags.logLevel
	}
	return cfg, nil
}

// withApp opens the queue for a command, and always saves and closes it
// afterwards, even when the command fails.
func (r *runner) withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := r.config()
		if err != nil {
			return err
		}
		level, err := cfg.SlogLevel()
		if err != nil {
			return errmsg.Error(errmsg.OpConfigLoad, err)
		}
		logger := newLogger(r.opts.Stderr, level)

		ctx := cmd.Context()
		a, err := openApp(ctx, cfg, r.opts, logger)
		if err != nil {
			return err
		}
		a.out = cmd.OutOrStdout()

		runErr := fn(ctx, a, args)
		return errors.Join(runErr, a.close(context.WithoutCancel(ctx)))
	}
}
