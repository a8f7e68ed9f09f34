package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/litcafe/backoffice/pkg/logger"
	"github.com/litcafe/backoffice/pkg/metrics"
	"go.uber.org/multierr"
)

const defaultInterval = 15 * time.Minute

// ServiceParams wires a Service. Logger and Lock are required.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
}

// Service runs every registered job once per interval on whichever worker
// holds the lock.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("cron service: logger required")
	case params.Lock == nil:
		return nil, errors.New("cron service: lock required")
	}
	svc := &Service{
		logg:     params.Logger,
		registry: params.Registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: params.Interval,
	}
	if svc.registry == nil {
		svc.registry = &Registry{}
	}
	if svc.interval <= 0 {
		svc.interval = defaultInterval
	}
	return svc, nil
}

// Run runs a cycle immediately and then on every tick until ctx ends. Cycle
// errors are logged; only cancellation stops the loop.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if err := s.runCycle(ctx); err != nil {
			s.logg.Error(ctx, "cron.cycle_failed", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunJobs executes the named jobs once, without taking the lock. With no
// names every registered job runs.
func (s *Service) RunJobs(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return s.runAll(ctx, s.registry.Jobs(), nil)
	}
	jobs := make([]Job, 0, len(names))
	for _, name := range names {
		job, ok := s.registry.Lookup(name)
		if !ok {
			return fmt.Errorf("unknown cron job %q", name)
		}
		jobs = append(jobs, job)
	}
	return s.runAll(ctx, jobs, nil)
}

// runCycle runs every job under the lock, extending it before each job
// after the first. A failing job does not stop the ones after it; losing
// the lock does.
func (s *Service) runCycle(ctx context.Context) error {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		s.logg.Info(ctx, "cron.cycle_skipped")
		s.metrics.IncSkippedCycle()
		return nil
	}
	defer func() {
		if relErr := s.lock.Release(context.WithoutCancel(ctx)); relErr != nil {
			s.logg.Error(ctx, "cron.lock_release_failed", relErr)
		}
	}()

	start := time.Now()
	err = s.runAll(ctx, s.registry.Jobs(), s.lock.Extend)
	s.logg.Info(s.logg.WithField(ctx, "duration_ms", time.Since(start).Milliseconds()), "cron.cycle_done")
	return err
}

func (s *Service) runAll(ctx context.Context, jobs []Job, extend func(context.Context) error) error {
	var errs error
	for i, job := range jobs {
		if i > 0 && extend != nil {
			if err := extend(ctx); err != nil {
				return multierr.Append(errs, fmt.Errorf("stopped before %s: %w", job.Name(), err))
			}
		}
		errs = multierr.Append(errs, s.runJob(ctx, job))
	}
	return errs
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	ctx = s.logg.WithField(ctx, "job", job.Name())
	start := time.Now()
	err := job.Run(ctx)
	took := time.Since(start)
	s.metrics.ObserveRun(job.Name(), took, err)

	ctx = s.logg.WithField(ctx, "duration_ms", took.Milliseconds())
	if err != nil {
		s.logg.Error(ctx, "cron.job_failed", err)
		return fmt.Errorf("%s: %w", job.Name(), err)
	}
	s.logg.Info(ctx, "cron.job_done")
	return nil
}
