// Package scheduler runs the periodic background jobs: subscription
// lifecycle sweep, calendar reminders and invoice overdue marking.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lexdesk/backend/internal/infrastructure/config"
	"github.com/lexdesk/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Job is one unit of periodic work. Run reports how many items failed;
// a non-nil error means the job as a whole could not run.
type Job struct {
	Name string
	Run  func(ctx context.Context) (failed int, err error)
}

// JobRecorder receives the outcome of every job run
type JobRecorder interface {
	RecordJob(ctx context.Context, job string, elapsed time.Duration, failedItems int, err error)
}

// Sweeper runs its jobs in order on every tick. A tick that arrives
// while the previous sweep is still running is skipped.
type Sweeper struct {
	config   config.SchedulerConfig
	jobs     []Job
	recorder JobRecorder
	logger   *zap.Logger

	running   atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSweeper creates a sweeper. recorder may be nil.
func NewSweeper(cfg config.SchedulerConfig, recorder JobRecorder, logger *zap.Logger, jobs ...Job) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 15 * time.Minute
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	return &Sweeper{config: cfg, jobs: jobs, recorder: recorder, logger: logger}
}

// Start runs a first sweep immediately and then one per interval
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Scheduler is disabled")
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Scheduler started",
		zap.Duration("interval", s.config.SweepInterval),
		zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop cancels the loop and waits for the current sweep, bounded by ctx
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// Trigger starts an out-of-band sweep in the background
func (s *Sweeper) Trigger(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		if err := s.RunOnce(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("Triggered sweep skipped", zap.Error(err))
		}
	}()
	return nil
}

// IsRunning reports whether the loop is active
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RunOnce runs every job once. It returns ErrRunInProgress when another
// sweep holds the slot. Job failures are logged, never returned.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	defer s.running.Store(false)

	for _, job := range s.jobs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.runJob(ctx, job)
	}
	return nil
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Scheduler loop stopping")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if err := s.RunOnce(ctx); err == ErrRunInProgress {
		s.logger.Debug("Previous sweep still running, tick skipped")
	}
}

// runJob executes job with the configured timeout, retrying whole-job
// errors up to RetryAttempts times
func (s *Sweeper) runJob(ctx context.Context, job Job) {
	ctx, span := telemetry.StartSpan(ctx, "scheduler."+job.Name, attribute.String("job", job.Name))

	start := time.Now()
	var (
		failed int
		err    error
	)
	for attempt := 0; ; attempt++ {
		jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
		failed, err = s.safeRun(jobCtx, job)
		cancel()
		if err == nil || attempt >= s.config.RetryAttempts || ctx.Err() != nil {
			break
		}
		s.logger.Warn("Job failed, retrying",
			zap.String("job", job.Name),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		select {
		case <-ctx.Done():
		case <-time.After(s.config.RetryDelay):
		}
	}
	elapsed := time.Since(start)
	telemetry.EndSpan(span, err)

	if s.recorder != nil {
		s.recorder.RecordJob(ctx, job.Name, elapsed, failed, err)
	}
	if err != nil {
		s.logger.Error("Job failed",
			zap.String("job", job.Name),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return
	}
	s.logger.Info("Job completed",
		zap.String("job", job.Name),
		zap.Duration("duration", elapsed),
		zap.Int("failed_items", failed))
}

func (s *Sweeper) safeRun(ctx context.Context, job Job) (failed int, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Job panicked", zap.String("job", job.Name), zap.Any("panic", r))
			err = errJobPanicked
		}
	}()
	return job.Run(ctx)
}
