package usecase

import (
	"context"
	"log/slog"
	"time"

	"GovernanceWeekly/internal/ports"
)

// Scheduler wires the cron driver with the collect and report use cases.
type Scheduler struct {
	driver      ports.Scheduler
	collect     *CollectPipeline
	report      *ReportPipeline
	collectSpec string
	reportSpec  string
	logger      *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, collect *CollectPipeline, collectSpec string, report *ReportPipeline, reportSpec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		driver:      driver,
		collect:     collect,
		report:      report,
		collectSpec: collectSpec,
		reportSpec:  reportSpec,
		logger:      logger,
	}
}

// Start registers both pipelines with the driver and starts it.
// Jobs run with ctx, so cancelling it aborts in-flight runs.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	if s.collect != nil && s.collectSpec != "" {
		err := s.driver.Add(s.collectSpec, func(trigger time.Time) {
			if _, err := s.collect.Collect(ctx, trigger); err != nil {
				logAt(s.logger, slog.LevelError, "scheduled collection failed", "error", err)
			}
		})
		if err != nil {
			return err
		}
	}

	if s.report != nil && s.reportSpec != "" {
		err := s.driver.Add(s.reportSpec, func(trigger time.Time) {
			if _, err := s.report.Generate(ctx, trigger); err != nil {
				logAt(s.logger, slog.LevelError, "scheduled report failed", "error", err)
			}
		})
		if err != nil {
			return err
		}
	}

	logAt(s.logger, slog.LevelInfo, "scheduler started", "collect", s.collectSpec, "report", s.reportSpec)
	return s.driver.Start(ctx)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
