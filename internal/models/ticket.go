package models

import (
	"fmt"

	"github.com/julianstephens/lifeos/internal/constants"
)

// Project groups tickets. Projects come from the configuration snapshot.
type Project struct {
	ID      string `toml:"id" json:"id"`
	Name    string `toml:"name" json:"name"`
	Channel string `toml:"channel" json:"channel,omitempty"` // destination for ticket updates
}

type Ticket struct {
	ID          string                 `json:"id"`
	ProjectID   string                 `json:"project_id"`
	Title       string                 `json:"title"`
	Status      constants.TicketStatus `json:"status"`
	CreatedAt   string                 `json:"created_at"`
	CompletedAt string                 `json:"completed_at,omitempty"`
}

func (t *Ticket) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("ticket title cannot be empty")
	}
	if t.ProjectID == "" {
		return fmt.Errorf("ticket must belong to a project")
	}
	if t.Status == constants.TicketDone && t.CompletedAt == "" {
		return fmt.Errorf("ticket %s is done but has no completion time", t.ID)
	}
	if t.Status == constants.TicketOpen && t.CompletedAt != "" {
		return fmt.Errorf("ticket %s is open but has a completion time", t.ID)
	}
	return nil
}
