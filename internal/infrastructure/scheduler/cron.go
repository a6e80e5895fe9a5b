package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"GovernanceWeekly/internal/ports"
)

// CronScheduler runs jobs on standard five-field cron expressions in a fixed time zone.
type CronScheduler struct {
	mu       sync.Mutex
	cron     *cron.Cron
	location *time.Location
	running  bool
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler evaluating expressions in loc.
// A job still running when its next slot fires is skipped for that slot.
func NewCronScheduler(loc *time.Location, logger *slog.Logger) *CronScheduler {
	if loc == nil {
		loc = time.Local
	}
	log := cronLogger{logger: logger}
	return &CronScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(log),
			cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
		),
		location: loc,
	}
}

// Add registers job under spec; the trigger time is passed in the scheduler's zone.
func (c *CronScheduler) Add(spec string, job func(time.Time)) error {
	if job == nil {
		return fmt.Errorf("job for %q is nil", spec)
	}
	_, err := c.cron.AddFunc(spec, func() {
		job(time.Now().In(c.location))
	})
	if err != nil {
		return fmt.Errorf("add cron %q: %w", spec, err)
	}
	return nil
}

// Start begins firing jobs until Stop is called or ctx is done.
func (c *CronScheduler) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}
	c.running = true
	c.cron.Start()

	go func() {
		<-ctx.Done()
		_ = c.Stop(context.Background())
	}()
	return nil
}

// Stop halts the scheduler and waits for running jobs or ctx, whichever ends first.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	done := c.cron.Stop()
	c.mu.Unlock()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the upcoming activation times of all registered jobs.
func (c *CronScheduler) Next() []time.Time {
	entries := c.cron.Entries()
	out := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		next := e.Next
		if next.IsZero() {
			next = e.Schedule.Next(time.Now().In(c.location))
		}
		out = append(out, next)
	}
	return out
}

// NextRun evaluates spec from the given instant.
func NextRun(spec string, from time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron %q: %w", spec, err)
	}
	return schedule.Next(from), nil
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if l.logger != nil {
		l.logger.Debug(msg, keysAndValues...)
	}
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	if l.logger != nil {
		l.logger.Error(msg, append(keysAndValues, "error", err)...)
	}
}
