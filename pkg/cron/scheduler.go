// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler runs a batch job on a cron spec. A run that is still going when
// the next one is due makes the next one skip.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	job     Job
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler for job. timeout bounds a single run.
func NewScheduler(spec string, timeout time.Duration, job Job, logger *slog.Logger) *Scheduler {
	cronLogger := cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))

	// Standard 5-field format, seconds disabled
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger)),
	)

	return &Scheduler{
		cron:    c,
		spec:    spec,
		job:     job,
		timeout: timeout,
		logger:  logger,
	}
}

// Start registers the job and begins scheduling.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("spec", s.spec),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop stops scheduling. The returned context is done once a running job
// has finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// Next returns the next scheduled run, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunNow triggers the job in the background.
func (s *Scheduler) RunNow() {
	go s.run()
}

func (s *Scheduler) run() {
	s.runOnce()
}

// runOnce executes the job. It reports false when a run was already going.
func (s *Scheduler) runOnce() bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("previous batch still running, skipping")
		return false
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	started := time.Now()
	s.logger.Info("scheduled batch starting")

	if err := s.job(ctx); err != nil {
		s.logger.Error("scheduled batch failed",
			slog.Duration("elapsed", time.Since(started)),
			slog.Any("error", err),
		)
		return true
	}

	s.logger.Info("scheduled batch completed", slog.Duration("elapsed", time.Since(started)))
	return true
}
