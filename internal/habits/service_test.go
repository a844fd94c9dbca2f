package habits

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
	lerrors "github.com/julianstephens/lifeos/internal/errors"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/storage"
)

var testHabits = []models.Habit{
	{Emoji: "🚶‍♂️", Name: "walk", Label: "Morning walk + water"},
	{Emoji: "🪥", Name: "teeth"},
	{Emoji: "🍳", Name: "cook"},
}

func newTestService(t *testing.T, now time.Time) (*Service, storage.Table) {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "lifeos.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	table, err := store.Table(context.Background(), constants.SheetHabits, constants.HabitHeader)
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	return NewService(table, testHabits, func() time.Time { return now }), table
}

func day(d int) time.Time {
	return time.Date(2026, 10, d, 12, 0, 0, 0, time.UTC)
}

func TestMarkUpserts(t *testing.T) {
	svc, table := newTestService(t, day(19))
	ctx := context.Background()

	if err := svc.Mark(ctx, "2026-10-19", "walk", false); err != nil {
		t.Fatalf("Mark() error = %v", err)
	}
	if err := svc.Mark(ctx, "2026-10-19", "walk", true); err != nil {
		t.Fatalf("Mark() error = %v", err)
	}
	if err := svc.Mark(ctx, "2026-10-19", "cook", true); err != nil {
		t.Fatalf("Mark() error = %v", err)
	}

	all, err := table.GetAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// header + one row per (date, habit)
	if len(all) != 3 {
		t.Fatalf("got %d rows, want 3: %v", len(all), all)
	}
	if all[1][2] != "1" {
		t.Errorf("walk row = %v, want completed", all[1])
	}
}

func TestStreak(t *testing.T) {
	svc, _ := newTestService(t, day(19))
	ctx := context.Background()

	for _, rec := range []struct {
		date      string
		completed bool
	}{
		{"2026-10-14", true},
		{"2026-10-15", false},
		{"2026-10-16", true},
		{"2026-10-17", true},
		{"2026-10-18", true},
		{"2026-10-19", true},
	} {
		if err := svc.Mark(ctx, rec.date, "walk", rec.completed); err != nil {
			t.Fatal(err)
		}
	}
	if err := svc.Mark(ctx, "2026-10-18", "teeth", true); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		habit string
		want  int
	}{
		{"walk", 4},
		// yesterday only: today is not done yet, so no streak
		{"teeth", 0},
		{"cook", 0},
	}
	for _, tt := range tests {
		got, err := svc.Streak(ctx, tt.habit)
		if err != nil {
			t.Fatalf("Streak(%s) error = %v", tt.habit, err)
		}
		if got != tt.want {
			t.Errorf("Streak(%s) = %d, want %d", tt.habit, got, tt.want)
		}
	}
}

func TestReset(t *testing.T) {
	svc, _ := newTestService(t, day(19))
	ctx := context.Background()

	if err := svc.Mark(ctx, "2026-10-19", "teeth", true); err != nil {
		t.Fatal(err)
	}

	missed, err := svc.Reset(ctx, "2026-10-19")
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if len(missed) != 2 || missed[0].Name != "walk" || missed[1].Name != "cook" {
		t.Errorf("missed = %+v", missed)
	}

	statuses, err := svc.StatusOn(ctx, "2026-10-19")
	if err != nil {
		t.Fatal(err)
	}
	for _, st := range statuses {
		if !st.Recorded {
			t.Errorf("%s not recorded after reset", st.Habit.Name)
		}
		if st.Completed != (st.Habit.Name == "teeth") {
			t.Errorf("%s completed = %v", st.Habit.Name, st.Completed)
		}
	}

	again, err := svc.Reset(ctx, "2026-10-19")
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 0 {
		t.Errorf("second reset recorded %d habits", len(again))
	}
}

func TestWeekly(t *testing.T) {
	svc, table := newTestService(t, day(18))
	ctx := context.Background()

	for _, date := range []string{"2026-10-11", "2026-10-12", "2026-10-15", "2026-10-18"} {
		if err := svc.Mark(ctx, date, "walk", true); err != nil {
			t.Fatal(err)
		}
	}
	if err := svc.Mark(ctx, "2026-10-13", "walk", false); err != nil {
		t.Fatal(err)
	}
	// malformed rows are ignored
	if _, err := table.Append(ctx, []string{"2026-10-14", "walk"}); err != nil {
		t.Fatal(err)
	}

	counts, err := svc.Weekly(ctx)
	if err != nil {
		t.Fatalf("Weekly() error = %v", err)
	}
	if len(counts) != 3 {
		t.Fatalf("got %d counts", len(counts))
	}
	if counts[0].Count != 3 || counts[0].Days != 7 {
		t.Errorf("walk = %+v, want 3 of 7", counts[0])
	}

	report := WeeklyReport(counts).Text
	if !strings.HasPrefix(report, "📊 **Weekly Habit Report**\n\n") {
		t.Errorf("report header = %q", report)
	}
	if !strings.Contains(report, "🚶‍♂️ **Walk**: 3 / 7  ███░░░░\n") {
		t.Errorf("report = %q", report)
	}
	if !strings.Contains(report, "🍳 **Cook**: 0 / 7  ░░░░░░░\n") {
		t.Errorf("report = %q", report)
	}
}

func TestMonthly(t *testing.T) {
	// March 1st reports on February, which has 28 days in 2026
	svc, _ := newTestService(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for d := 1; d <= 7; d++ {
		date := time.Date(2026, 2, d, 0, 0, 0, 0, time.UTC).Format(constants.DateFormat)
		if err := svc.Mark(ctx, date, "walk", true); err != nil {
			t.Fatal(err)
		}
	}
	for _, date := range []string{"2026-01-31", "2026-03-01"} {
		if err := svc.Mark(ctx, date, "walk", true); err != nil {
			t.Fatal(err)
		}
	}

	counts, month, err := svc.Monthly(ctx)
	if err != nil {
		t.Fatalf("Monthly() error = %v", err)
	}
	if month != time.February {
		t.Errorf("month = %s", month)
	}
	if counts[0].Count != 7 || counts[0].Days != 28 {
		t.Errorf("walk = %+v", counts[0])
	}

	report := MonthlyReport(month, counts).Text
	if !strings.HasPrefix(report, "📅 **Monthly Habit Report — February**") {
		t.Errorf("report = %q", report)
	}
	// 7/28 of ten cells is 2.5, which rounds to even
	if !strings.Contains(report, "**Walk**: 7 / 28  ██░░░░░░░░") {
		t.Errorf("report = %q", report)
	}
}

func TestPreviousMonth(t *testing.T) {
	first, last := PreviousMonth(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	if first.Format(constants.DateFormat) != "2025-12-01" || last.Format(constants.DateFormat) != "2025-12-31" {
		t.Errorf("PreviousMonth() = %s, %s", first, last)
	}
}

func TestFind(t *testing.T) {
	svc, _ := newTestService(t, day(19))
	if h, err := svc.Find("🪥"); err != nil || h.Name != "teeth" {
		t.Errorf("Find(emoji) = %+v, %v", h, err)
	}
	if h, err := svc.Find("Cook"); err != nil || h.Emoji != "🍳" {
		t.Errorf("Find(name) = %+v, %v", h, err)
	}
	if _, err := svc.Find("🎸"); !errors.Is(err, lerrors.ErrNotFound) {
		t.Errorf("Find(unknown) error = %v", err)
	}
}

func TestMessages(t *testing.T) {
	checkin := CheckinMessage("2026-10-19", testHabits).Text
	want := "☀️ **Daily Check-in — 2026-10-19**\n\nReact when completed:\n🚶‍♂️ Morning walk + water\n🪥 Teeth\n🍳 Cook"
	if checkin != want {
		t.Errorf("CheckinMessage() = %q, want %q", checkin, want)
	}

	log := LogMessage("2026-10-19", "walk", true, 4).Text
	if log != "✅ **2026-10-19** — walk\n🔥 Streak: 4 days" {
		t.Errorf("LogMessage() = %q", log)
	}
	if missed := LogMessage("2026-10-19", "cook", false, 0).Text; !strings.HasPrefix(missed, "❌") {
		t.Errorf("LogMessage(missed) = %q", missed)
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		filled, width int
		want          string
	}{
		{0, 3, "░░░"},
		{2, 3, "██░"},
		{5, 3, "███"},
		{-1, 2, "░░"},
	}
	for _, tt := range tests {
		if got := Bar(tt.filled, tt.width); got != tt.want {
			t.Errorf("Bar(%d, %d) = %q, want %q", tt.filled, tt.width, got, tt.want)
		}
	}
}
