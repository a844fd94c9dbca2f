// Package tickets is a small per-project ticket tracker.
package tickets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/lifeos/internal/constants"
	lerrors "github.com/julianstephens/lifeos/internal/errors"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/notifier"
	"github.com/julianstephens/lifeos/internal/storage"
)

const (
	colID = iota
	colProject
	colTitle
	colStatus
	colCreatedAt
	colCompletedAt
)

const minFields = 5

// idLength is how many characters of a UUID make up a ticket id.
const idLength = 8

type Service struct {
	mu       sync.Mutex
	table    storage.Table
	projects []models.Project
	now      func() time.Time
	newID    func() string
}

// Open returns a service over the provider's tickets sheet.
func Open(ctx context.Context, p storage.Provider, projects []models.Project, now func() time.Time) (*Service, error) {
	table, err := p.Table(ctx, constants.SheetTickets, constants.TicketHeader)
	if err != nil {
		return nil, lerrors.IO("open tickets", err)
	}
	return NewService(table, projects, now), nil
}

func NewService(table storage.Table, projects []models.Project, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		table:    table,
		projects: projects,
		now:      now,
		newID:    func() string { return uuid.NewString()[:idLength] },
	}
}

// Projects returns the configured projects.
func (s *Service) Projects() []models.Project { return s.projects }

// Project resolves a project by id, then by case-insensitive name.
func (s *Service) Project(key string) (models.Project, error) {
	key = strings.TrimSpace(key)
	for _, p := range s.projects {
		if p.ID == key {
			return p, nil
		}
	}
	for _, p := range s.projects {
		if strings.EqualFold(p.Name, key) {
			return p, nil
		}
	}
	return models.Project{}, fmt.Errorf("%w: project %q", lerrors.ErrNotFound, key)
}

func encode(t models.Ticket) []string {
	return []string{t.ID, t.ProjectID, t.Title, string(t.Status), t.CreatedAt, t.CompletedAt}
}

func decode(fields []string) (models.Ticket, bool) {
	if len(fields) < minFields {
		return models.Ticket{}, false
	}
	t := models.Ticket{
		ID:        fields[colID],
		ProjectID: fields[colProject],
		Title:     fields[colTitle],
		Status:    constants.TicketStatus(fields[colStatus]),
		CreatedAt: fields[colCreatedAt],
	}
	if len(fields) > colCompletedAt {
		t.CompletedAt = fields[colCompletedAt]
	}
	return t, true
}

// Create opens a ticket in the project named by projectKey.
func (s *Service) Create(ctx context.Context, projectKey, title string) (models.Ticket, error) {
	project, err := s.Project(projectKey)
	if err != nil {
		return models.Ticket{}, err
	}
	t := models.Ticket{
		ID:        s.newID(),
		ProjectID: project.ID,
		Title:     strings.TrimSpace(title),
		Status:    constants.TicketOpen,
		CreatedAt: s.now().Format(time.RFC3339),
	}
	if err := t.Validate(); err != nil {
		return models.Ticket{}, err
	}
	if _, err := s.table.Append(ctx, encode(t)); err != nil {
		return models.Ticket{}, lerrors.IO("append ticket", err)
	}
	return t, nil
}

// List returns tickets, optionally narrowed to one project and one status.
func (s *Service) List(ctx context.Context, projectID string, status constants.TicketStatus) ([]models.Ticket, error) {
	rows, err := s.table.Find(ctx, storage.All)
	if err != nil {
		return nil, lerrors.IO("read tickets", err)
	}
	tickets := []models.Ticket{}
	for _, r := range rows {
		t, ok := decode(r.Fields)
		if !ok {
			continue
		}
		if projectID != "" && t.ProjectID != projectID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

// Complete closes the ticket with id. Closing a done ticket is a no-op.
func (s *Service) Complete(ctx context.Context, id string) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.table.Find(ctx, storage.ColumnEqualFold(colID, strings.TrimSpace(id)))
	if err != nil {
		return models.Ticket{}, lerrors.IO("find ticket", err)
	}
	for _, r := range rows {
		t, ok := decode(r.Fields)
		if !ok {
			continue
		}
		if t.Status == constants.TicketDone {
			return t, nil
		}
		t.Status = constants.TicketDone
		t.CompletedAt = s.now().Format(time.RFC3339)
		if err := s.table.Update(ctx, r.ID, colStatus, string(t.Status)); err != nil {
			return models.Ticket{}, lerrors.IO("update ticket", err)
		}
		if err := s.table.Update(ctx, r.ID, colCompletedAt, t.CompletedAt); err != nil {
			return models.Ticket{}, lerrors.IO("update ticket", err)
		}
		return t, nil
	}
	return models.Ticket{}, fmt.Errorf("%w: ticket %q", lerrors.ErrNotFound, id)
}

// CreatedMessage announces a new ticket.
func CreatedMessage(p models.Project, t models.Ticket) notifier.Message {
	return notifier.Textf("🎫 **%s** `%s` %s", p.Name, t.ID, t.Title)
}

// DoneMessage announces a closed ticket.
func DoneMessage(t models.Ticket) notifier.Message {
	return notifier.Textf("%s `%s` %s", constants.ReactionDone, t.ID, t.Title)
}

// ListMessage renders a project's open tickets.
func ListMessage(p models.Project, tickets []models.Ticket) notifier.Message {
	if len(tickets) == 0 {
		return notifier.Textf("🎫 **%s**\n_No open tickets_", p.Name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🎫 **%s**\n\n", p.Name)
	for _, t := range tickets {
		fmt.Fprintf(&b, "• `%s` %s\n", t.ID, t.Title)
	}
	return notifier.Message{Text: b.String()}
}
