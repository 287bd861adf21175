// Package scheduler runs named recurring tasks on cron expressions. Tasks
// report errors instead of handling them; the scheduler logs and keeps the
// schedule alive, so one failed crawl never stops the next one.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Task func(ctx context.Context) error

type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	logger *zap.Logger
}

// New builds a scheduler whose tasks run under ctx; cancelling it makes
// in-flight tasks wind down while Stop halts further triggers.
func New(ctx context.Context, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cron: cron.New(), ctx: ctx, logger: logger}
}

// Add registers task under a standard 5-field cron spec.
func (s *Scheduler) Add(spec, name string, task Task) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := task(s.ctx); err != nil {
			s.logger.Error("scheduled task failed", zap.String("task", name), zap.Error(err))
			return
		}
		s.logger.Info("scheduled task finished", zap.String("task", name))
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.logger.Info("task scheduled", zap.String("task", name), zap.String("spec", spec))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop ends scheduling; tasks already running continue until they return.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
