// Package scheduler runs background jobs such as the exchange-rate refresh.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/stwalsh4118/landledger/internal/logger"
)

// TaskFunc is the body of a job. A returned error is logged, not retried.
type TaskFunc func(ctx context.Context) error

// Scheduler wraps a gocron scheduler with logging and panic recovery.
type Scheduler struct {
	scheduler gocron.Scheduler
	log       *logger.Logger
}

// New creates a stopped scheduler.
func New(log *logger.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, log: log.WithComponent("scheduler")}, nil
}

// Start begins running registered jobs.
func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop waits for running jobs to finish and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

// Every registers fn to run each interval. A run that is still busy when the
// next one is due delays that run rather than overlapping it.
func (s *Scheduler) Every(name string, interval time.Duration, fn TaskFunc, startImmediately bool) error {
	opts := []gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if startImmediately {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	if _, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.wrap(name, fn)),
		opts...,
	); err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}
	return nil
}

// wrap adds logging and recovery around fn.
func (s *Scheduler) wrap(name string, fn TaskFunc) func(ctx context.Context) {
	return func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("panic recovered in scheduled job", fmt.Errorf("%v", r), map[string]interface{}{
					"job":   name,
					"stack": string(debug.Stack()),
				})
			}
		}()

		start := time.Now()
		s.log.Debug("job started", map[string]interface{}{"job": name})

		if err := fn(ctx); err != nil {
			s.log.Error("job failed", err, map[string]interface{}{"job": name})
			return
		}
		s.log.Info("job completed", map[string]interface{}{
			"job":         name,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}
