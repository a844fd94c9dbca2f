// Package calendar keeps personal and professional calendar events in the
// record store.
package calendar

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/julianstephens/lifeos/internal/constants"
	lerrors "github.com/julianstephens/lifeos/internal/errors"
	"github.com/julianstephens/lifeos/internal/logger"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/notifier"
	"github.com/julianstephens/lifeos/internal/parser"
	"github.com/julianstephens/lifeos/internal/storage"
)

const (
	colID = iota
	colCalendar
	colTitle
	colStart
	colEnd
	colCreatedAt
)

const minFields = 5

// Kind selects one of the two configured calendars.
type Kind string

const (
	Personal     Kind = "personal"
	Professional Kind = "professional"
)

// IDs names the backing calendars. Professional may be empty.
type IDs struct {
	Personal     string
	Professional string
}

type Service struct {
	table storage.Table
	ids   IDs
	loc   *time.Location
	now   func() time.Time
}

// Open returns a service over the provider's events sheet.
func Open(ctx context.Context, p storage.Provider, ids IDs, loc *time.Location, now func() time.Time) (*Service, error) {
	table, err := p.Table(ctx, constants.SheetEvents, constants.EventHeader)
	if err != nil {
		return nil, lerrors.IO("open events", err)
	}
	return NewService(table, ids, loc, now), nil
}

func NewService(table storage.Table, ids IDs, loc *time.Location, now func() time.Time) *Service {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Service{table: table, ids: ids, loc: loc, now: now}
}

// CalendarID returns the identifier behind kind.
func (s *Service) CalendarID(kind Kind) (string, error) {
	switch kind {
	case Professional:
		if s.ids.Professional == "" {
			return "", lerrors.Missing("professional calendar")
		}
		return s.ids.Professional, nil
	default:
		if s.ids.Personal == "" {
			return "", lerrors.Missing("personal calendar")
		}
		return s.ids.Personal, nil
	}
}

// HasProfessional reports whether a professional calendar is configured.
func (s *Service) HasProfessional() bool { return s.ids.Professional != "" }

// Add stores a one hour event starting at start.
func (s *Service) Add(ctx context.Context, calendarID, title string, start time.Time) (models.EventResult, error) {
	now := s.now()
	ev := models.CalendarEvent{
		ID:         uuid.NewString(),
		CalendarID: calendarID,
		Title:      title,
		Start:      start.In(s.loc),
		End:        start.In(s.loc).Add(constants.DefaultEventDuration),
		CreatedAt:  now,
	}
	row := []string{
		ev.ID,
		ev.CalendarID,
		ev.Title,
		ev.Start.Format(time.RFC3339),
		ev.End.Format(time.RFC3339),
		ev.CreatedAt.Format(time.RFC3339),
	}
	if _, err := s.table.Append(ctx, row); err != nil {
		err = lerrors.IO("add event", err)
		return models.EventResult{Error: err.Error()}, err
	}
	logger.Debug("Added calendar event", "calendar", calendarID, "start", ev.Start)
	return models.EventResult{Success: true, Event: &ev}, nil
}

// SplitKind strips a leading "personal" or "professional" word from input.
func SplitKind(input string) (Kind, string) {
	trimmed := strings.TrimSpace(input)
	first, rest := trimmed, ""
	if i := strings.IndexFunc(trimmed, unicode.IsSpace); i >= 0 {
		first, rest = trimmed[:i], trimmed[i:]
	}
	for _, k := range []Kind{Professional, Personal} {
		if strings.EqualFold(first, string(k)) {
			return k, strings.TrimSpace(rest)
		}
	}
	return Personal, trimmed
}

// AddFromText parses an event phrase, optionally prefixed with the calendar
// kind, and stores it.
func (s *Service) AddFromText(ctx context.Context, input string) (models.EventResult, error) {
	kind, text := SplitKind(input)
	calendarID, err := s.CalendarID(kind)
	if err != nil {
		return models.EventResult{Error: err.Error()}, err
	}

	intent := parser.ParseEvent(text, s.now(), s.loc)
	if !intent.Success {
		err := fmt.Errorf("%w: %s", lerrors.ErrParseFailure, intent.Error)
		return models.EventResult{Error: intent.Error}, err
	}
	return s.Add(ctx, calendarID, intent.Title, intent.DateTime)
}

func (s *Service) decode(fields []string) (models.CalendarEvent, bool) {
	if len(fields) < minFields {
		return models.CalendarEvent{}, false
	}
	start, err := time.Parse(time.RFC3339, fields[colStart])
	if err != nil {
		return models.CalendarEvent{}, false
	}
	end, err := time.Parse(time.RFC3339, fields[colEnd])
	if err != nil {
		end = start.Add(constants.DefaultEventDuration)
	}
	ev := models.CalendarEvent{
		ID:         fields[colID],
		CalendarID: fields[colCalendar],
		Title:      fields[colTitle],
		Start:      start.In(s.loc),
		End:        end.In(s.loc),
	}
	if len(fields) > colCreatedAt {
		ev.CreatedAt, _ = time.Parse(time.RFC3339, fields[colCreatedAt])
	}
	return ev, true
}

// Upcoming returns the calendar's events starting within the next days days,
// earliest first.
func (s *Service) Upcoming(ctx context.Context, calendarID string, days int) ([]models.CalendarEvent, error) {
	rows, err := s.table.Find(ctx, storage.ColumnEquals(colCalendar, calendarID))
	if err != nil {
		return nil, lerrors.IO("list events", err)
	}
	from := s.now()
	to := from.AddDate(0, 0, days)

	events := []models.CalendarEvent{}
	for _, r := range rows {
		ev, ok := s.decode(r.Fields)
		if !ok {
			continue
		}
		if !ev.Start.Before(from) && ev.Start.Before(to) {
			events = append(events, ev)
		}
	}
	slices.SortStableFunc(events, func(a, b models.CalendarEvent) int {
		return a.Start.Compare(b.Start)
	})
	return events, nil
}

// FormatEvents renders events under title.
func FormatEvents(events []models.CalendarEvent, title string) notifier.Message {
	if len(events) == 0 {
		return notifier.Textf("%s\n_No upcoming events_", title)
	}
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	for _, ev := range events {
		when := ev.Start.Format(constants.EventTimeFormat)
		if ev.AllDay() {
			when = ev.Start.Format(constants.EventDateFormat)
		}
		summary := ev.Title
		if summary == "" {
			summary = "Untitled event"
		}
		fmt.Fprintf(&b, "📅 **%s** - %s\n", summary, when)
	}
	return notifier.Message{Text: b.String()}
}

// AddedMessage confirms a stored event.
func AddedMessage(ev models.CalendarEvent) notifier.Message {
	return notifier.Textf("%s Event added: **%s** on %s", constants.ReactionDone, ev.Title, ev.Start.Format(constants.EventTimeFormat))
}

// Digest builds the calendar messages for the next days days: the personal
// calendar always, the professional one only when configured and not empty.
// span labels the period, e.g. "Next 2 Days".
func (s *Service) Digest(ctx context.Context, days int, span string) ([]notifier.Message, error) {
	personal, err := s.Upcoming(ctx, s.ids.Personal, days)
	if err != nil {
		return nil, err
	}
	msgs := []notifier.Message{FormatEvents(personal, "📅 **Personal Calendar - "+span+"**")}

	if !s.HasProfessional() {
		return msgs, nil
	}
	professional, err := s.Upcoming(ctx, s.ids.Professional, days)
	if err != nil {
		return msgs, err
	}
	if len(professional) > 0 {
		msgs = append(msgs, FormatEvents(professional, "💼 **Professional Calendar - "+span+"**"))
	}
	return msgs, nil
}
