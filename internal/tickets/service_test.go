package tickets

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
	lerrors "github.com/julianstephens/lifeos/internal/errors"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/storage"
)

var testProjects = []models.Project{
	{ID: "web", Name: "Website", Channel: "website"},
	{ID: "home", Name: "House"},
}

func newTestService(t *testing.T) (*Service, storage.Table) {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "lifeos.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	table, err := store.Table(context.Background(), constants.SheetTickets, constants.TicketHeader)
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	svc := NewService(table, testProjects, func() time.Time { return now })
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("t%07d", n)
	}
	return svc, table
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, "website", "  fix footer ")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if ticket.ID != "t0000001" || ticket.ProjectID != "web" || ticket.Title != "fix footer" {
		t.Errorf("ticket = %+v", ticket)
	}
	if ticket.Status != constants.TicketOpen || ticket.CreatedAt != "2026-10-19T09:00:00Z" {
		t.Errorf("ticket = %+v", ticket)
	}

	if _, err := svc.Create(ctx, "garden", "weed"); !errors.Is(err, lerrors.ErrNotFound) {
		t.Errorf("Create(unknown project) error = %v", err)
	}
	if _, err := svc.Create(ctx, "home", "   "); err == nil {
		t.Error("Create() should reject an empty title")
	}
}

func TestDefaultIDs(t *testing.T) {
	svc := NewService(nil, nil, nil)
	if id := svc.newID(); len(id) != idLength {
		t.Errorf("newID() = %q", id)
	}
}

func TestListAndComplete(t *testing.T) {
	svc, table := newTestService(t)
	ctx := context.Background()

	for _, c := range []struct{ project, title string }{
		{"web", "fix footer"},
		{"web", "new logo"},
		{"home", "paint door"},
	} {
		if _, err := svc.Create(ctx, c.project, c.title); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := table.Append(ctx, []string{"broken"}); err != nil {
		t.Fatal(err)
	}

	done, err := svc.Complete(ctx, "T0000002")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if done.Status != constants.TicketDone || done.CompletedAt == "" {
		t.Errorf("done = %+v", done)
	}
	if err := done.Validate(); err != nil {
		t.Errorf("done ticket invalid: %v", err)
	}

	open, err := svc.List(ctx, "web", constants.TicketOpen)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(open) != 1 || open[0].Title != "fix footer" {
		t.Errorf("open web tickets = %+v", open)
	}

	all, _ := svc.List(ctx, "", "")
	if len(all) != 3 {
		t.Errorf("got %d tickets, want 3", len(all))
	}

	if _, err := svc.Complete(ctx, "nope"); !errors.Is(err, lerrors.ErrNotFound) {
		t.Errorf("Complete(unknown) error = %v", err)
	}
}

func TestMessages(t *testing.T) {
	p := testProjects[0]
	ticket := models.Ticket{ID: "abc12345", Title: "fix footer"}

	if got := CreatedMessage(p, ticket).Text; got != "🎫 **Website** `abc12345` fix footer" {
		t.Errorf("CreatedMessage() = %q", got)
	}
	if got := ListMessage(p, nil).Text; !strings.Contains(got, "No open tickets") {
		t.Errorf("ListMessage(empty) = %q", got)
	}
	if got := ListMessage(p, []models.Ticket{ticket}).Text; !strings.Contains(got, "• `abc12345` fix footer") {
		t.Errorf("ListMessage() = %q", got)
	}
}
