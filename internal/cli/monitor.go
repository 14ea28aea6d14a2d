package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"multiping/internal/pinger"
	"multiping/internal/session"
	"multiping/internal/tui"
	pkgerrors "multiping/pkg/errors"
)

// runDisplay shows the live grid until the user quits or ctx is cancelled.
var runDisplay = func(ctx context.Context, deps tui.Deps) error {
	_, err := tui.NewProgram(ctx, deps).Run()
	return err
}

func runMonitor(cmd *cobra.Command, opts *rootOptions, host string) error {
	if opts.count < 0 {
		return &pkgerrors.UsageError{Msg: fmt.Sprintf("--count must not be negative, got %d", opts.count)}
	}

	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.Config
	logger := a.Logger.With(zap.String("host", host))

	command, err := resolveCommand(cfg.PingCommand, cfg.PingTimeout)
	if err != nil {
		return err
	}

	p := pinger.New(host, pinger.Options{
		Interval:      cfg.Interval,
		SoftTimeout:   cfg.SoftTimeout,
		SlowThreshold: cfg.SlowThreshold,
		Count:         opts.count,
		Command:       command,
		Logger:        a.Logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder *session.Recorder
	if cfg.History {
		store, err := a.Storage()
		if err != nil {
			return err
		}
		recorder, err = session.NewRecorder(store, p, cfg.HistoryCheckpoint, logger)
		if err != nil {
			return err
		}
		if err := recorder.Start(ctx); err != nil {
			return fmt.Errorf("failed to record session: %w", err)
		}
	}

	if err := p.Start(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Leaving the display ends the run.
		defer p.Quit()
		return runDisplay(gctx, tui.Deps{Source: p, RowWidth: cfg.RowWidth})
	})
	g.Go(func() error {
		p.Join()
		return nil
	})
	err = g.Wait()

	if recorder != nil {
		// The run context may already be cancelled; the final write must
		// still happen.
		if stopErr := recorder.Stop(context.WithoutCancel(ctx)); stopErr != nil {
			logger.Warn("failed to finalize session", zap.Error(stopErr))
		}
	}

	if interrupted(err) {
		logger.Info("interrupted")
		return nil
	}
	return err
}

// resolveCommand locates the ping binary and builds the probe command.
var resolveCommand = func(name string, timeout time.Duration) (pinger.CommandFunc, error) {
	binary, err := pinger.FindPingBinary(name)
	if err != nil {
		return nil, err
	}
	return pinger.PingCommand(binary, timeout), nil
}

// interrupted reports whether err only means the user asked to stop.
func interrupted(err error) bool {
	return errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled)
}
