// Package tasks runs periodic background jobs.
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Job is one unit of periodic work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler 以 goroutine + ticker 周期性执行任务。
// Scheduler runs each job on its own ticker until stopped.
type Scheduler struct {
	jobs   []Job
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var ErrAlreadyStarted = errors.New("scheduler already started")

// NewScheduler returns a Scheduler for jobs.
func NewScheduler(logger *slog.Logger, jobs ...Job) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{jobs: jobs, logger: logger}
}

// Start launches the jobs. Each job runs once immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadyStarted
	}
	ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		if job.Interval <= 0 {
			s.logger.Warn("job disabled", "job", job.Name)
			continue
		}
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
	return nil
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		start := time.Now()
		if err := job.Run(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("job failed", "job", job.Name, "error", err)
		} else {
			s.logger.Debug("job done", "job", job.Name, "took", time.Since(start))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop cancels the jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
}
