package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/habits"
)

type HabitCmd struct {
	List   HabitListCmd   `cmd:"" help:"List configured habits."`
	Mark   HabitMarkCmd   `cmd:"" help:"Mark a habit as done (or missed) for a day."`
	Today  HabitTodayCmd  `cmd:"" help:"Show today's habit status."`
	Streak HabitStreakCmd `cmd:"" help:"Show the current streak for a habit."`
	Report HabitReportCmd `cmd:"" help:"Print the weekly or monthly habit report."`
}

func (c *Context) habits(ctx context.Context) (*habits.Service, error) {
	return habits.Open(ctx, c.Store, c.Config.Habits, c.Config.Now)
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *Context) error {
	if len(ctx.Config.Habits) == 0 {
		ctx.Println("No habits configured.")
		return nil
	}
	for _, h := range ctx.Config.Habits {
		ctx.Printf("  %s %-10s %s\n", h.Emoji, h.Name, DimStyle.Render(h.Label))
	}
	return nil
}

type HabitMarkCmd struct {
	Habit  string `arg:"" help:"Habit name or emoji."`
	Date   string `help:"Date to mark (YYYY-MM-DD). Defaults to today."`
	Missed bool   `help:"Record the habit as missed instead of done."`
}

func (c *HabitMarkCmd) Run(ctx *Context) error {
	svc, err := ctx.habits(context.Background())
	if err != nil {
		return err
	}
	habit, err := svc.Find(c.Habit)
	if err != nil {
		return err
	}

	date := c.Date
	if date == "" {
		date = svc.Today()
	} else if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}

	if err := svc.Mark(context.Background(), date, habit.Name, !c.Missed); err != nil {
		return err
	}
	if c.Missed {
		ctx.Printf("❌ %s missed on %s\n", habit.Name, date)
		return nil
	}
	ctx.Printf("%s %s done on %s\n", constants.ReactionDone, SuccessStyle.Render(habit.Name), date)
	return nil
}

type HabitTodayCmd struct{}

func (c *HabitTodayCmd) Run(ctx *Context) error {
	svc, err := ctx.habits(context.Background())
	if err != nil {
		return err
	}
	today := svc.Today()
	statuses, err := svc.StatusOn(context.Background(), today)
	if err != nil {
		return err
	}

	ctx.Println(HeaderStyle.Render("Habits for " + today))
	for _, st := range statuses {
		mark := DimStyle.Render("[ ]")
		switch {
		case st.Completed:
			mark = SuccessStyle.Render("[✓]")
		case st.Recorded:
			mark = DangerStyle.Render("[✗]")
		}
		ctx.Printf("  %s %s %s\n", mark, st.Habit.Emoji, st.Habit.Name)
	}
	return nil
}

type HabitStreakCmd struct {
	Habit string `arg:"" help:"Habit name or emoji."`
}

func (c *HabitStreakCmd) Run(ctx *Context) error {
	svc, err := ctx.habits(context.Background())
	if err != nil {
		return err
	}
	habit, err := svc.Find(c.Habit)
	if err != nil {
		return err
	}
	streak, err := svc.Streak(context.Background(), habit.Name)
	if err != nil {
		return err
	}
	ctx.Printf("🔥 %s %s: %d days\n", habit.Emoji, habit.Name, streak)
	return nil
}

type HabitReportCmd struct {
	Monthly bool `help:"Report on the previous month instead of the last seven days."`
}

func (c *HabitReportCmd) Run(ctx *Context) error {
	svc, err := ctx.habits(context.Background())
	if err != nil {
		return err
	}
	if c.Monthly {
		counts, month, err := svc.Monthly(context.Background())
		if err != nil {
			return err
		}
		ctx.Println(habits.MonthlyReport(month, counts).Plain())
		return nil
	}
	counts, err := svc.Weekly(context.Background())
	if err != nil {
		return err
	}
	ctx.Println(habits.WeeklyReport(counts).Plain())
	return nil
}
