package todos

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/lifeos/internal/constants"
	lerrors "github.com/julianstephens/lifeos/internal/errors"
	"github.com/julianstephens/lifeos/internal/models"
)

// Column positions in the todos sheet.
const (
	colID = iota
	colContent
	colStatus
	colCreatedAt
	colCompletedAt
	colDeadline
	colType
	colFrequency
	colNextDue
	colPriority
	colTags
)

// minFields is the shortest row read paths accept.
const minFields = 6

// Encode lays a todo out in sheet column order.
func Encode(t models.Todo) []string {
	return []string{
		strconv.Itoa(t.ID),
		t.Content,
		string(t.Status),
		t.CreatedAt,
		t.CompletedAt,
		t.Deadline,
		string(t.Type),
		t.Frequency,
		t.NextDue,
		string(t.Priority),
		strings.Join(t.Tags, ","),
	}
}

// Decode reads a sheet row. Rows from older sheets may stop after the
// deadline column; missing columns take their defaults.
func Decode(fields []string) (models.Todo, error) {
	if len(fields) < minFields {
		return models.Todo{}, fmt.Errorf("%w: todo row has %d fields", lerrors.ErrMalformedRecord, len(fields))
	}
	field := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	id, err := strconv.Atoi(field(colID))
	if err != nil {
		return models.Todo{}, fmt.Errorf("%w: todo id %q", lerrors.ErrMalformedRecord, field(colID))
	}

	t := models.Todo{
		TodoIntent: models.TodoIntent{
			Content:   fields[colContent],
			Type:      constants.TodoType(field(colType)),
			Frequency: field(colFrequency),
			NextDue:   field(colNextDue),
			Deadline:  field(colDeadline),
			Priority:  constants.Priority(field(colPriority)),
			Tags:      []string{},
		},
		ID:          id,
		Status:      constants.TodoStatus(field(colStatus)),
		CreatedAt:   field(colCreatedAt),
		CompletedAt: field(colCompletedAt),
	}
	if t.Type == "" {
		t.Type = constants.TodoOneTime
	}
	if t.Priority == "" {
		t.Priority = constants.PriorityMedium
	}
	if tags := field(colTags); tags != "" {
		t.Tags = strings.Split(tags, ",")
	}
	t.Completed = t.Status == constants.TodoDone
	return t, nil
}
