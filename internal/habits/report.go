package habits

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/notifier"
)

// Bar draws filled cells out of width.
func Bar(filled, width int) string {
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// CheckinMessage lists the habits to react to for date.
func CheckinMessage(date string, habits []models.Habit) notifier.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "☀️ **Daily Check-in — %s**\n\nReact when completed:\n", date)
	for _, h := range habits {
		label := h.Label
		if label == "" {
			label = capitalize(h.Name)
		}
		fmt.Fprintf(&b, "%s %s\n", h.Emoji, label)
	}
	return notifier.Message{Text: strings.TrimRight(b.String(), "\n")}
}

// LogMessage reports a habit outcome and the current streak.
func LogMessage(date, habit string, completed bool, streak int) notifier.Message {
	status := constants.ReactionDone
	if !completed {
		status = "❌"
	}
	return notifier.Textf("%s **%s** — %s\n🔥 Streak: %d days", status, date, habit, streak)
}

// WeeklyReport renders the seven-day counts with a bar per habit.
func WeeklyReport(counts []models.HabitCount) notifier.Message {
	var b strings.Builder
	b.WriteString("📊 **Weekly Habit Report**\n\n")
	for _, c := range counts {
		fmt.Fprintf(&b, "%s **%s**: %d / %d  %s\n",
			c.Habit.Emoji, capitalize(c.Habit.Name), c.Count, constants.WeeklyBarCells,
			Bar(c.Count, constants.WeeklyBarCells))
	}
	return notifier.Message{Text: b.String()}
}

// MonthlyReport renders a month's counts scaled onto a ten-cell bar.
func MonthlyReport(month time.Month, counts []models.HabitCount) notifier.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 **Monthly Habit Report — %s**\n\n", month)
	for _, c := range counts {
		filled := 0
		if c.Days > 0 {
			// half-way values round to even, so 7 of 28 days fills 2 cells
			filled = int(math.RoundToEven(float64(c.Count*constants.MonthlyBarCells) / float64(c.Days)))
		}
		fmt.Fprintf(&b, "%s **%s**: %d / %d  %s\n",
			c.Habit.Emoji, capitalize(c.Habit.Name), c.Count, c.Days,
			Bar(filled, constants.MonthlyBarCells))
	}
	return notifier.Message{Text: b.String()}
}

// TodayMessage summarizes the day's statuses.
func TodayMessage(date string, statuses []Status) notifier.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 **Habits — %s**\n\n", date)
	for _, st := range statuses {
		mark := "⬜"
		switch {
		case st.Completed:
			mark = constants.ReactionDone
		case st.Recorded:
			mark = "❌"
		}
		fmt.Fprintf(&b, "%s %s %s\n", mark, st.Habit.Emoji, st.Habit.Name)
	}
	return notifier.Message{Text: b.String()}
}

// Log posts a habit outcome with its current streak to dest.
func (s *Service) Log(ctx context.Context, sink notifier.Sink, dest, date, habit string, completed bool) error {
	streak, err := s.Streak(ctx, habit)
	if err != nil {
		return err
	}
	return sink.Send(ctx, dest, LogMessage(date, habit, completed, streak))
}
