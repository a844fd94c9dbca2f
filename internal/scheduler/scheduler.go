// Package scheduler runs the bot's periodic jobs.
//
// A single goroutine ticks once a minute and evaluates every job in order.
// Daily jobs keep a "last fired on" date so they run at most once per day.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/logger"
	"github.com/julianstephens/lifeos/internal/utils"
)

// Trigger reports whether a job is due at now.
type Trigger func(now time.Time) bool

type Job struct {
	Name string
	When Trigger
	// Daily limits the job to one run per calendar day.
	Daily bool
	Run   func(ctx context.Context, now time.Time) error
}

type Scheduler struct {
	// Tick is the evaluation interval.
	Tick time.Duration
	// Clock returns the current time in the bot's time zone.
	Clock func() time.Time

	mu        sync.Mutex
	jobs      []Job
	lastFired map[string]string
}

func New(jobs []Job, clock func() time.Time) *Scheduler {
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{
		Tick:      constants.SchedulerTick,
		Clock:     clock,
		jobs:      jobs,
		lastFired: map[string]string{},
	}
}

// SetJobs replaces the job list. Fired-on dates are kept by job name, so a
// reload does not repeat today's daily jobs.
func (s *Scheduler) SetJobs(jobs []Job, clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = jobs
	if clock != nil {
		s.Clock = clock
	}
}

// Run evaluates the jobs immediately and then on every tick until ctx is
// cancelled. A running job is never interrupted.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Tick)
	defer ticker.Stop()

	logger.Info("Scheduler started", "tick", s.Tick)
	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce evaluates every job against the current time.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Clock()
	today := utils.FormatDate(now)
	for _, job := range s.jobs {
		if job.Daily && s.lastFired[job.Name] == today {
			continue
		}
		if job.When != nil && !job.When(now) {
			continue
		}
		if job.Daily {
			s.lastFired[job.Name] = today
		}
		if err := job.Run(ctx, now); err != nil {
			logger.Error("Scheduled job failed", "job", job.Name, "error", err)
		}
	}
}

// At fires during the minute hh:mm.
func At(hhmm string) Trigger {
	tod, err := utils.ParseTime(hhmm)
	if err != nil {
		return never
	}
	return func(now time.Time) bool {
		return now.Hour() == tod.Hour() && now.Minute() == tod.Minute()
	}
}

// After fires from hh:mm plus offset until the end of the day.
func After(hhmm string, offset time.Duration) Trigger {
	return func(now time.Time) bool {
		target, err := utils.AtTimeOfDay(now, hhmm)
		if err != nil {
			return false
		}
		return !now.Before(target.Add(offset))
	}
}

// OnWeekday narrows t to one day of the week.
func OnWeekday(day time.Weekday, t Trigger) Trigger {
	return func(now time.Time) bool {
		return now.Weekday() == day && t(now)
	}
}

// OnMonthDay narrows t to one day of the month.
func OnMonthDay(day int, t Trigger) Trigger {
	return func(now time.Time) bool {
		return now.Day() == day && t(now)
	}
}

// Always fires on every tick.
func Always(time.Time) bool { return true }

func never(time.Time) bool { return false }
