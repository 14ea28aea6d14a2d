package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"multiping/internal/pinger"
	"multiping/internal/storage"
	"multiping/internal/storage/models"
	pkgerrors "multiping/pkg/errors"
)

// Source is what the recorder reads. *pinger.Pinger satisfies it.
type Source interface {
	Host() string
	Interval() time.Duration
	Status() *pinger.Status
}

// Recorder persists a running session: one row on Start, a checkpoint on
// a fixed cadence, and the final state on Stop.
type Recorder struct {
	store     storage.Storage
	source    Source
	every     time.Duration
	logger    *zap.Logger
	scheduler gocron.Scheduler

	mu      sync.Mutex
	session models.Session
	running bool
}

// NewRecorder creates a recorder that checkpoints every interval.
func NewRecorder(store storage.Storage, source Source, every time.Duration, logger *zap.Logger) (*Recorder, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Recorder{
		store:     store,
		source:    source,
		every:     every,
		logger:    logger,
		scheduler: scheduler,
	}, nil
}

// Start creates the session row and begins checkpointing.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return pkgerrors.ErrRecorderRunning
	}

	r.session = models.Session{
		Host:      r.source.Host(),
		Interval:  r.source.Interval(),
		StartedAt: r.source.Status().Started(),
	}
	if err := r.store.CreateSession(ctx, &r.session); err != nil {
		return err
	}

	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.every),
		gocron.NewTask(func() {
			if err := r.Checkpoint(ctx); err != nil {
				r.logger.Warn("session checkpoint failed",
					zap.Int64("session_id", r.SessionID()),
					zap.Error(err),
				)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint job: %w", err)
	}

	r.scheduler.Start()
	r.running = true

	r.logger.Info("session recording started",
		zap.Int64("session_id", r.session.ID),
		zap.Duration("checkpoint", r.every),
	)
	return nil
}

// Checkpoint writes the current counters and outcomes.
func (r *Recorder) Checkpoint(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flush(ctx, nil)
}

// Stop halts checkpointing and writes the final state with its end time.
func (r *Recorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return pkgerrors.ErrRecorderNotRunning
	}
	r.running = false
	r.mu.Unlock()

	// Shutdown waits for an in-flight checkpoint, which takes mu.
	if err := r.scheduler.Shutdown(); err != nil {
		r.logger.Warn("failed to stop checkpoint scheduler", zap.Error(err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ended := time.Now()
	if err := r.flush(ctx, &ended); err != nil {
		return err
	}
	r.logger.Info("session recording finished",
		zap.Int64("session_id", r.session.ID),
		zap.Int("sent", r.session.Sent),
		zap.Int("received", r.session.Received),
	)
	return nil
}

// flush must be called with mu held.
func (r *Recorder) flush(ctx context.Context, ended *time.Time) error {
	snap := r.source.Status().Snapshot()
	r.session.Sent = snap.Sent
	r.session.Received = snap.Received
	r.session.Outcomes = snap.String()
	r.session.EndedAt = ended
	return r.store.UpdateSession(ctx, &r.session)
}

// SessionID returns the row id, or 0 before Start.
func (r *Recorder) SessionID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.ID
}

// Session returns a copy of the last persisted state.
func (r *Recorder) Session() models.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}
