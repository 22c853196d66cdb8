package pipeline

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"sopforge/config"
)

// HealthFunc probes the system for the periodic health check. A nil error
// means healthy.
type HealthFunc func(ctx context.Context) error

// Scheduler drives recurring batch runs: a daily generation pass, a weekly
// forced regeneration, and a periodic health check.
type Scheduler struct {
	cron      *cron.Cron
	orch      *Orchestrator
	cfg       config.ScheduleConfig
	templates []string
	health    HealthFunc
	logger    *slog.Logger
}

// NewScheduler builds a scheduler over the orchestrator.
func NewScheduler(orch *Orchestrator, cfg config.ScheduleConfig, templates []string, health HealthFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:      cron.New(),
		orch:      orch,
		cfg:       cfg,
		templates: templates,
		health:    health,
		logger:    logger,
	}
}

// Start registers the cron entries and begins scheduling. The ctx bounds
// every triggered run.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.Daily, func() {
		s.logger.Info("scheduled daily batch starting")
		if _, err := s.orch.Run(ctx, RunOptions{TemplateTypes: s.templates}); err != nil {
			s.logger.Error("scheduled daily batch failed", "error", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.cfg.WeeklyForce, func() {
		s.logger.Info("scheduled weekly forced regeneration starting")
		if _, err := s.orch.Run(ctx, RunOptions{TemplateTypes: s.templates, Force: true}); err != nil {
			s.logger.Error("scheduled weekly batch failed", "error", err)
		}
	}); err != nil {
		return err
	}

	if s.health != nil {
		if _, err := s.cron.AddFunc(s.cfg.HealthCheck, func() {
			if err := s.health(ctx); err != nil {
				s.logger.Error("health check failed", "error", err)
				return
			}
			s.logger.Info("health check passed")
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		"daily", s.cfg.Daily,
		"weekly_force", s.cfg.WeeklyForce,
		"health_check", s.cfg.HealthCheck)
	return nil
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("scheduler stopped")
}
