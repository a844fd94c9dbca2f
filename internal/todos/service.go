// Package todos stores todos in the record store and answers questions
// about them.
package todos

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
	lerrors "github.com/julianstephens/lifeos/internal/errors"
	"github.com/julianstephens/lifeos/internal/logger"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/notifier"
	"github.com/julianstephens/lifeos/internal/parser"
	"github.com/julianstephens/lifeos/internal/storage"
	"github.com/julianstephens/lifeos/internal/urgency"
)

type Service struct {
	// mu serializes read-modify-write sequences such as id assignment.
	mu    sync.Mutex
	table storage.Table
	now   func() time.Time
}

// Open returns a service over the provider's todos sheet.
func Open(ctx context.Context, p storage.Provider, now func() time.Time) (*Service, error) {
	table, err := p.Table(ctx, constants.SheetTodos, constants.TodoHeader)
	if err != nil {
		return nil, lerrors.IO("open todos", err)
	}
	return NewService(table, now), nil
}

func NewService(table storage.Table, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{table: table, now: now}
}

// Add parses text and stores the resulting todo. Ids are the sheet's row
// count at the time of insertion, so the first todo gets id 1.
func (s *Service) Add(ctx context.Context, text string) (models.Todo, error) {
	now := s.now()
	intent := parser.ParseTodo(text, now)
	if intent.Content == "" {
		return models.Todo{}, fmt.Errorf("%w: todo has no content", lerrors.ErrParseFailure)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.table.GetAll(ctx)
	if err != nil {
		return models.Todo{}, lerrors.IO("read todos", err)
	}

	todo := models.NewTodo(len(all), intent, now)
	if _, err := s.table.Append(ctx, Encode(todo)); err != nil {
		return models.Todo{}, lerrors.IO("append todo", err)
	}
	logger.Debug("Added todo", "id", todo.ID, "type", todo.Type, "next_due", todo.NextDue)
	return todo, nil
}

type entry struct {
	row  storage.RowID
	todo models.Todo
}

// entries returns every decodable todo with its row. Malformed rows are skipped.
func (s *Service) entries(ctx context.Context) ([]entry, error) {
	rows, err := s.table.Find(ctx, storage.All)
	if err != nil {
		return nil, lerrors.IO("read todos", err)
	}
	var out []entry
	for _, r := range rows {
		t, err := Decode(r.Fields)
		if err != nil {
			logger.Debug("Skipping todo row", "row", r.ID, "error", err)
			continue
		}
		out = append(out, entry{row: r.ID, todo: t})
	}
	return out, nil
}

// List returns todos with the given status, or all todos when status is empty.
func (s *Service) List(ctx context.Context, status constants.TodoStatus) ([]models.Todo, error) {
	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	todos := []models.Todo{}
	for _, e := range entries {
		if status == "" || e.todo.Status == status {
			todos = append(todos, e.todo)
		}
	}
	return todos, nil
}

// Ranked returns pending todos ordered by urgency as of today.
func (s *Service) Ranked(ctx context.Context) ([]urgency.Ranked, error) {
	pending, err := s.List(ctx, constants.TodoPending)
	if err != nil {
		return nil, err
	}
	return urgency.Rank(pending, s.now()), nil
}

// Complete marks the todo with id done. Completing a done todo is a no-op.
func (s *Service) Complete(ctx context.Context, id int) (models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.table.Find(ctx, storage.ColumnEquals(colID, strconv.Itoa(id)))
	if err != nil {
		return models.Todo{}, lerrors.IO("find todo", err)
	}
	for _, r := range rows {
		t, err := Decode(r.Fields)
		if err != nil {
			continue
		}
		return s.markDone(ctx, entry{row: r.ID, todo: t})
	}
	return models.Todo{}, fmt.Errorf("%w: todo %d", lerrors.ErrNotFound, id)
}

// CompleteMatching marks done the first pending todo whose content appears
// in message. It reports false when nothing matched.
func (s *Service) CompleteMatching(ctx context.Context, message string) (models.Todo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.entries(ctx)
	if err != nil {
		return models.Todo{}, false, err
	}
	for _, e := range entries {
		if !e.todo.IsPending() || e.todo.Content == "" {
			continue
		}
		if strings.Contains(message, e.todo.Content) {
			t, err := s.markDone(ctx, e)
			return t, err == nil, err
		}
	}
	return models.Todo{}, false, nil
}

// markDone writes completed_at before status so a failed write never leaves
// a done row without a completion time. A done row already missing one is
// repaired.
func (s *Service) markDone(ctx context.Context, e entry) (models.Todo, error) {
	t := e.todo
	switch {
	case t.IsPending():
		t.MarkDone(s.now())
	case t.Status == constants.TodoDone && t.CompletedAt == "":
		t.Completed = true
		t.CompletedAt = s.now().Format(time.RFC3339)
	default:
		return t, nil
	}

	if err := s.table.Update(ctx, e.row, colCompletedAt, t.CompletedAt); err != nil {
		return models.Todo{}, lerrors.IO("update todo", err)
	}
	if !e.todo.IsPending() {
		logger.Info("Repaired todo completion time", "id", t.ID)
		return t, nil
	}
	if err := s.table.Update(ctx, e.row, colStatus, string(t.Status)); err != nil {
		if rerr := s.table.Update(ctx, e.row, colCompletedAt, ""); rerr != nil {
			logger.Warn("Failed to clear completion time", "id", t.ID, "error", rerr)
		}
		return models.Todo{}, lerrors.IO("update todo", err)
	}
	return t, nil
}

// DueBetween returns pending todos whose timed next_due falls in [from, to).
// Date-only next_due values are left to the daily digest.
func (s *Service) DueBetween(ctx context.Context, from, to time.Time) ([]models.Todo, error) {
	pending, err := s.List(ctx, constants.TodoPending)
	if err != nil {
		return nil, err
	}
	var due []models.Todo
	for _, t := range pending {
		at, err := time.ParseInLocation(constants.DateTimeFormat, t.NextDue, from.Location())
		if err != nil {
			continue
		}
		if !at.Before(from) && at.Before(to) {
			due = append(due, t)
		}
	}
	return due, nil
}

// DueLabel is the date shown next to a todo: its deadline, else its next due.
func DueLabel(t models.Todo) string {
	if t.Deadline != "" {
		return t.Deadline
	}
	return t.NextDue
}

// Digest formats ranked todos for the todo channel. It reports false when
// there is nothing to send.
func Digest(ranked []urgency.Ranked) (notifier.Message, bool) {
	if len(ranked) == 0 {
		return notifier.Message{}, false
	}
	var b strings.Builder
	b.WriteString("📝 **Today's Todos**\n\n")
	for _, r := range ranked {
		b.WriteString(urgency.Indicator(r.Tier))
		b.WriteString(" ")
		b.WriteString(r.Todo.Content)
		if due := DueLabel(r.Todo); due != "" {
			fmt.Fprintf(&b, " _(due %s)_", due)
		}
		b.WriteString("\n")
	}
	return notifier.Message{Text: b.String()}, true
}

// Reminder formats the message sent when a timed todo comes due.
func Reminder(t models.Todo) notifier.Message {
	if t.Frequency == "" {
		return notifier.Textf("⏰ **Reminder**: %s", t.Content)
	}
	return notifier.Textf("⏰ **Reminder**: %s _(%s)_", t.Content, t.Frequency)
}
