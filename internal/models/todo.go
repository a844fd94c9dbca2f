package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
)

// TodoIntent is the structured result of interpreting one raw todo message.
type TodoIntent struct {
	Content   string             `json:"content"`
	Type      constants.TodoType `json:"type"`
	Frequency string             `json:"frequency,omitempty"` // e.g. every-Tuesday-21:00, daily, every-2-weeks
	NextDue   string             `json:"next_due,omitempty"`  // YYYY-MM-DD or YYYY-MM-DDTHH:MM
	Deadline  string             `json:"deadline,omitempty"`  // YYYY-MM-DD
	Priority  constants.Priority `json:"priority"`
	Tags      []string           `json:"tags"`
}

// Todo is the persisted form of a TodoIntent.
type Todo struct {
	TodoIntent
	ID          int                  `json:"id"`
	Status      constants.TodoStatus `json:"status"`
	Completed   bool                 `json:"completed"`
	CreatedAt   string               `json:"created_at"`             // RFC3339 timestamp
	CompletedAt string               `json:"completed_at,omitempty"` // RFC3339 timestamp
}

// NewTodo creates a pending todo from an intent.
func NewTodo(id int, intent TodoIntent, createdAt time.Time) Todo {
	return Todo{
		TodoIntent: intent,
		ID:         id,
		Status:     constants.TodoPending,
		CreatedAt:  createdAt.Format(time.RFC3339),
	}
}

// MarkDone transitions the todo to done. Done todos are left untouched.
func (t *Todo) MarkDone(at time.Time) {
	if t.Status == constants.TodoDone {
		return
	}
	t.Status = constants.TodoDone
	t.Completed = true
	t.CompletedAt = at.Format(time.RFC3339)
}

// IsPending returns true if the todo has not been completed
func (t *Todo) IsPending() bool {
	return t.Status == constants.TodoPending
}

// Validate checks the status/completion invariants.
func (t *Todo) Validate() error {
	switch t.Status {
	case constants.TodoDone:
		if !t.Completed {
			return fmt.Errorf("todo %d is done but not marked completed", t.ID)
		}
		if t.CompletedAt == "" {
			return fmt.Errorf("todo %d is done but has no completion time", t.ID)
		}
	case constants.TodoPending:
		if t.Completed {
			return fmt.Errorf("todo %d is pending but marked completed", t.ID)
		}
		if t.CompletedAt != "" {
			return fmt.Errorf("todo %d is pending but has a completion time", t.ID)
		}
	default:
		return fmt.Errorf("todo %d has unknown status %q", t.ID, t.Status)
	}

	switch t.Priority {
	case constants.PriorityLow, constants.PriorityMedium, constants.PriorityHigh:
	default:
		return fmt.Errorf("todo %d has unknown priority %q", t.ID, t.Priority)
	}

	return nil
}
