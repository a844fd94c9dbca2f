// Package habits records daily habit outcomes and builds the check-in,
// log and summary messages.
package habits

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
	lerrors "github.com/julianstephens/lifeos/internal/errors"
	"github.com/julianstephens/lifeos/internal/logger"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/storage"
	"github.com/julianstephens/lifeos/internal/utils"
)

const (
	colDate = iota
	colHabit
	colCompleted
)

const minFields = 3

type Service struct {
	mu     sync.Mutex
	table  storage.Table
	habits []models.Habit
	now    func() time.Time
}

// Open returns a service over the provider's habits sheet.
func Open(ctx context.Context, p storage.Provider, habits []models.Habit, now func() time.Time) (*Service, error) {
	table, err := p.Table(ctx, constants.SheetHabits, constants.HabitHeader)
	if err != nil {
		return nil, lerrors.IO("open habits", err)
	}
	return NewService(table, habits, now), nil
}

func NewService(table storage.Table, habits []models.Habit, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{table: table, habits: habits, now: now}
}

// Habits returns the configured habits.
func (s *Service) Habits() []models.Habit { return s.habits }

// Today returns today's date as YYYY-MM-DD.
func (s *Service) Today() string { return utils.FormatDate(s.now()) }

func encodeCompleted(completed bool) string {
	if completed {
		return "1"
	}
	return "0"
}

func decode(fields []string) (models.HabitRecord, bool) {
	if len(fields) < minFields {
		return models.HabitRecord{}, false
	}
	return models.HabitRecord{
		Date:      fields[colDate],
		Habit:     fields[colHabit],
		Completed: fields[colCompleted] == "1",
	}, true
}

// Mark upserts the record for (date, habit).
func (s *Service) Mark(ctx context.Context, date, habit string, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markLocked(ctx, date, habit, completed)
}

func (s *Service) markLocked(ctx context.Context, date, habit string, completed bool) error {
	rows, err := s.table.Find(ctx, storage.Both(
		storage.ColumnEquals(colDate, date),
		storage.ColumnEquals(colHabit, habit),
	))
	if err != nil {
		return lerrors.IO("find habit", err)
	}
	if len(rows) > 0 {
		if err := s.table.Update(ctx, rows[0].ID, colCompleted, encodeCompleted(completed)); err != nil {
			return lerrors.IO("update habit", err)
		}
		return nil
	}
	if _, err := s.table.Append(ctx, []string{date, habit, encodeCompleted(completed)}); err != nil {
		return lerrors.IO("append habit", err)
	}
	return nil
}

// Records returns every well-formed habit record.
func (s *Service) Records(ctx context.Context) ([]models.HabitRecord, error) {
	rows, err := s.table.Find(ctx, storage.All)
	if err != nil {
		return nil, lerrors.IO("read habits", err)
	}
	var records []models.HabitRecord
	for _, r := range rows {
		if rec, ok := decode(r.Fields); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Streak counts consecutive completed days for habit, ending today. A day
// without a completed record ends the streak.
func (s *Service) Streak(ctx context.Context, habit string) (int, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return 0, err
	}
	done := map[string]bool{}
	for _, r := range records {
		if r.Habit == habit && r.Completed {
			done[r.Date] = true
		}
	}

	streak := 0
	for day := s.now(); done[utils.FormatDate(day)]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak, nil
}

// Status is one habit's outcome for a day. Recorded is false when nothing
// has been logged yet.
type Status struct {
	Habit     models.Habit
	Recorded  bool
	Completed bool
}

// StatusOn returns each configured habit's record for date.
func (s *Service) StatusOn(ctx context.Context, date string) ([]Status, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	byHabit := map[string]models.HabitRecord{}
	for _, r := range records {
		if r.Date == date {
			byHabit[r.Habit] = r
		}
	}
	statuses := make([]Status, 0, len(s.habits))
	for _, h := range s.habits {
		r, ok := byHabit[h.Name]
		statuses = append(statuses, Status{Habit: h, Recorded: ok, Completed: r.Completed})
	}
	return statuses, nil
}

// Reset records every habit still unlogged on date as missed and returns them.
func (s *Service) Reset(ctx context.Context, date string) ([]models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses, err := s.StatusOn(ctx, date)
	if err != nil {
		return nil, err
	}
	var missed []models.Habit
	for _, st := range statuses {
		if st.Recorded {
			continue
		}
		if err := s.markLocked(ctx, date, st.Habit.Name, false); err != nil {
			return missed, err
		}
		missed = append(missed, st.Habit)
	}
	if len(missed) > 0 {
		logger.Info("Daily reset recorded missed habits", "date", date, "count", len(missed))
	}
	return missed, nil
}

// Counts returns completed days per configured habit with from <= date <= to.
// days is the length of the period.
func (s *Service) Counts(ctx context.Context, from, to string, days int) ([]models.HabitCount, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	counts := make([]models.HabitCount, 0, len(s.habits))
	for _, h := range s.habits {
		c := models.HabitCount{Habit: h, Days: days}
		for _, r := range records {
			if r.Habit == h.Name && r.Completed && r.Date >= from && r.Date <= to {
				c.Count++
			}
		}
		counts = append(counts, c)
	}
	return counts, nil
}

// Weekly counts the seven days ending today.
func (s *Service) Weekly(ctx context.Context) ([]models.HabitCount, error) {
	today := s.now()
	from := utils.FormatDate(today.AddDate(0, 0, -(constants.WeeklyBarCells - 1)))
	return s.Counts(ctx, from, utils.FormatDate(today), constants.WeeklyBarCells)
}

// Monthly counts the calendar month before today's and returns that month.
func (s *Service) Monthly(ctx context.Context) ([]models.HabitCount, time.Month, error) {
	first, last := PreviousMonth(s.now())
	counts, err := s.Counts(ctx, utils.FormatDate(first), utils.FormatDate(last), last.Day())
	return counts, first.Month(), err
}

// PreviousMonth returns the first and last day of the month before t's.
func PreviousMonth(t time.Time) (time.Time, time.Time) {
	thisMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return thisMonth.AddDate(0, -1, 0), thisMonth.AddDate(0, 0, -1)
}

// Find resolves a habit by emoji or case-insensitive name.
func (s *Service) Find(key string) (models.Habit, error) {
	for _, h := range s.habits {
		if h.Emoji == key || strings.EqualFold(h.Name, key) {
			return h, nil
		}
	}
	return models.Habit{}, fmt.Errorf("%w: habit %q", lerrors.ErrNotFound, key)
}
