package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/lifeos/internal/calendar"
	"github.com/julianstephens/lifeos/internal/config"
	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/habits"
	"github.com/julianstephens/lifeos/internal/logger"
	"github.com/julianstephens/lifeos/internal/notifier"
	"github.com/julianstephens/lifeos/internal/todos"
	"github.com/julianstephens/lifeos/internal/utils"
)

// Deps are the services jobs act on.
type Deps struct {
	Config    *config.Snapshot
	Habits    *habits.Service
	Todos     *todos.Service
	Calendar  *calendar.Service
	Sink      notifier.Sink
	Reminders *Window
}

// Jobs builds the job list from the configuration's schedule. Order matters:
// the daily reset runs before the Sunday summary that reads its records.
func Jobs(d Deps) []Job {
	sched := d.Config.Schedule
	offset := time.Duration(sched.TodoOffsetMinutes) * time.Minute

	return []Job{
		{Name: "daily-checkin", When: At(sched.Checkin), Daily: true, Run: d.dailyCheckin},
		{Name: "todo-digest", When: After(sched.Checkin, offset), Daily: true, Run: d.todoDigest},
		{Name: "due-reminders", When: Always, Run: d.dueReminders},
		{Name: "daily-reset", When: At(sched.Reset), Daily: true, Run: d.dailyReset},
		{Name: "weekly-summary", When: OnWeekday(time.Sunday, After(sched.Reset, 0)), Daily: true, Run: d.weeklySummary},
		{Name: "monthly-summary", When: OnMonthDay(1, After(sched.Checkin, 0)), Daily: true, Run: d.monthlySummary},
		{Name: "daily-calendar", When: At(sched.Calendar), Daily: true, Run: d.calendarDigest(constants.DailyCalendarDays, "Next 2 Days")},
		{Name: "weekly-calendar", When: OnWeekday(time.Monday, At(sched.Calendar)), Daily: true, Run: d.calendarDigest(constants.WeeklyCalendarDays, "Next 2 Weeks")},
	}
}

func (d Deps) dailyCheckin(ctx context.Context, now time.Time) error {
	msg := habits.CheckinMessage(utils.FormatDate(now), d.Habits.Habits())
	return d.Sink.Send(ctx, d.Config.Channels.Checkin, msg)
}

func (d Deps) todoDigest(ctx context.Context, _ time.Time) error {
	ranked, err := d.Todos.Ranked(ctx)
	if err != nil {
		return err
	}
	msg, ok := todos.Digest(ranked)
	if !ok {
		return nil
	}
	return d.Sink.Send(ctx, d.Config.Channels.Todo, msg)
}

func (d Deps) dueReminders(ctx context.Context, now time.Time) error {
	from := now.Truncate(time.Minute)
	due, err := d.Todos.DueBetween(ctx, from, from.Add(time.Minute))
	if err != nil {
		return err
	}

	var errs []error
	for _, t := range due {
		key := fmt.Sprintf("%d@%s", t.ID, t.NextDue)
		if d.Reminders.Seen(key, now) {
			continue
		}
		if err := d.Sink.Send(ctx, d.Config.Channels.Todo, todos.Reminder(t)); err != nil {
			errs = append(errs, err)
		}
	}
	if n := d.Reminders.Sweep(now); n > 0 {
		logger.Debug("Swept reminder window", "removed", n, "tracked", d.Reminders.Len())
	}
	return errors.Join(errs...)
}

func (d Deps) dailyReset(ctx context.Context, now time.Time) error {
	date := utils.FormatDate(now)
	missed, err := d.Habits.Reset(ctx, date)
	if err != nil {
		return err
	}
	var errs []error
	for _, h := range missed {
		if err := d.Habits.Log(ctx, d.Sink, d.Config.Channels.HabitLog, date, h.Name, false); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d Deps) weeklySummary(ctx context.Context, _ time.Time) error {
	counts, err := d.Habits.Weekly(ctx)
	if err != nil {
		return err
	}
	msg := habits.WeeklyReport(counts)
	msg.Replace = true
	return d.Sink.Send(ctx, d.Config.Channels.Weekly, msg)
}

func (d Deps) monthlySummary(ctx context.Context, _ time.Time) error {
	counts, month, err := d.Habits.Monthly(ctx)
	if err != nil {
		return err
	}
	msg := habits.MonthlyReport(month, counts)
	msg.Replace = true
	return d.Sink.Send(ctx, d.Config.Channels.Monthly, msg)
}

func (d Deps) calendarDigest(days int, span string) func(context.Context, time.Time) error {
	return func(ctx context.Context, _ time.Time) error {
		msgs, err := d.Calendar.Digest(ctx, days, span)
		var errs []error
		if err != nil {
			errs = append(errs, err)
		}
		for _, msg := range msgs {
			if err := d.Sink.Send(ctx, d.Config.Channels.Calendar, msg); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
