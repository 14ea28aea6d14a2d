package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"multiping/internal/app"
	"multiping/internal/config"
	pkgerrors "multiping/pkg/errors"
)

var version = "dev"

// Exit codes returned by Run.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
	dbPath     string

	interval  time.Duration
	count     int
	noHistory bool
}

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "multiping [flags] HOST",
		Short: "Watch a host's reachability as a live grid of ping outcomes",
		Long: `multiping - Watch a host's reachability as a live grid of ping outcomes

  One ping attempt is launched per interval. Each attempt becomes one
  character in the grid:

    #  reply          %  slow reply (1s or more)
    -  no reply       ?  ping error
    !  timed out (ping was killed)

  Quick start:
    multiping example.com
    multiping -i 500ms -c 120 10.0.0.1
    multiping history`,
		Version:           version,
		Args:              exactlyOneHost,
		ValidArgsFunction: completeHosts(opts),
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, opts, args[0])
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &pkgerrors.UsageError{Msg: err.Error()}
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file path (default ~/.config/multiping/config.yaml)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&opts.dbPath, "db", "", "history database path")

	f := cmd.Flags()
	f.DurationVarP(&opts.interval, "interval", "i", 0, "time between attempts (default 1s)")
	f.IntVarP(&opts.count, "count", "c", 0, "stop after this many attempts (0 runs until quit)")
	f.BoolVar(&opts.noHistory, "no-history", false, "do not record this session in the history")

	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newCompletionCmd(cmd))
	return cmd
}

func exactlyOneHost(_ *cobra.Command, args []string) error {
	switch len(args) {
	case 1:
		return nil
	case 0:
		return &pkgerrors.UsageError{Msg: "missing HOST argument"}
	default:
		return &pkgerrors.UsageError{Msg: fmt.Sprintf("expected one HOST, got %d arguments", len(args))}
	}
}

// usageArgs turns argument validation failures into usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &pkgerrors.UsageError{Msg: err.Error()}
		}
		return nil
	}
}

// Execute executes the root command and exits the process
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes the command line in args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args on nil.
		args = []string{}
	}
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, pkgerrors.ErrUsage):
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		fmt.Fprint(stderr, cmd.UsageString())
		return exitUsage
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
}

// loadConfig reads the config file and applies flag overrides on top.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	path := opts.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return config.Config{}, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("db") {
		cfg.DBPath = opts.dbPath
	}
	if flags.Lookup("interval") != nil && flags.Changed("interval") {
		cfg.Interval = opts.interval
	}
	if flags.Lookup("no-history") != nil && flags.Changed("no-history") {
		cfg.History = !opts.noHistory
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newApp loads the config and builds the application context.
func newApp(cmd *cobra.Command, opts *rootOptions) (*app.App, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return a, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "multiping %s\n", version)
		},
	}
}
