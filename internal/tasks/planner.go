// Package tasks runs the periodic queue maintenance jobs.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"queuely/internal/config"
	"queuely/internal/logger"
	"queuely/internal/queue"
)

// Jobs is the work the scheduler drives
type Jobs interface {
	Reconcile(ctx context.Context) (*queue.ReconcileReport, error)
	AutoDispatch(ctx context.Context) (int, error)
}

// Scheduler owns the cron instance and its jobs.
type Scheduler struct {
	cron    *cron.Cron
	jobs    Jobs
	timeout time.Duration
	log     *logger.Logger
}

// NewScheduler registers the jobs whose spec is non-empty. Each run gets its
// own timeout, and a run still in progress makes the next tick skip.
func NewScheduler(jobs Jobs, cfg config.TasksConfig, timeout time.Duration, log *logger.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		jobs:    jobs,
		timeout: timeout,
		log:     log.WithComponent("scheduler"),
	}

	if cfg.ReconcileSpec != "" {
		if _, err := s.cron.AddFunc(cfg.ReconcileSpec, s.RunReconcile); err != nil {
			return nil, fmt.Errorf("schedule reconcile %q: %w", cfg.ReconcileSpec, err)
		}
	}
	if cfg.AutoDispatchSpec != "" {
		if _, err := s.cron.AddFunc(cfg.AutoDispatchSpec, s.RunAutoDispatch); err != nil {
			return nil, fmt.Errorf("schedule auto-dispatch %q: %w", cfg.AutoDispatchSpec, err)
		}
	}
	return s, nil
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops scheduling and returns a context done when running jobs finish
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunReconcile performs one reconciliation pass
func (s *Scheduler) RunReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	report, err := s.jobs.Reconcile(ctx)
	if err != nil {
		s.log.Error("reconcile failed", "error", err)
		return
	}
	if report.Registered+report.Orphaned+report.Pruned > 0 {
		s.log.Info("reconcile repaired drift",
			"registered", report.Registered,
			"orphaned", report.Orphaned,
			"pruned", report.Pruned,
			"took", time.Since(start))
		return
	}
	s.log.Debug("reconcile clean", "took", time.Since(start))
}

// RunAutoDispatch dispatches full blocks of auto-dispatch queues
func (s *Scheduler) RunAutoDispatch() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.jobs.AutoDispatch(ctx)
	if err != nil {
		s.log.Error("auto-dispatch failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("auto-dispatched blocks", "blocks", n)
	}
}
