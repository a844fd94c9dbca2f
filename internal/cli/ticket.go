package cli

import (
	"context"
	"strings"

	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/tickets"
)

type TicketCmd struct {
	Add  TicketAddCmd  `cmd:"" help:"Open a ticket on a project."`
	List TicketListCmd `cmd:"" help:"List a project's tickets."`
	Done TicketDoneCmd `cmd:"" help:"Close a ticket."`
}

type ProjectCmd struct {
	List ProjectListCmd `cmd:"" help:"List configured projects." default:"1"`
}

func (c *Context) tickets(ctx context.Context) (*tickets.Service, error) {
	return tickets.Open(ctx, c.Store, c.Config.Projects, c.Config.Now)
}

type TicketAddCmd struct {
	Project string   `arg:"" help:"Project id or name."`
	Title   []string `arg:"" help:"Ticket title."`
}

func (c *TicketAddCmd) Run(ctx *Context) error {
	svc, err := ctx.tickets(context.Background())
	if err != nil {
		return err
	}
	project, err := svc.Project(c.Project)
	if err != nil {
		return err
	}
	t, err := svc.Create(context.Background(), project.ID, strings.Join(c.Title, " "))
	if err != nil {
		return err
	}
	ctx.Println(tickets.CreatedMessage(project, t).Text)
	return nil
}

type TicketListCmd struct {
	Project string `arg:"" help:"Project id or name."`
	All     bool   `help:"Include closed tickets."`
}

func (c *TicketListCmd) Run(ctx *Context) error {
	svc, err := ctx.tickets(context.Background())
	if err != nil {
		return err
	}
	project, err := svc.Project(c.Project)
	if err != nil {
		return err
	}

	status := constants.TicketOpen
	if c.All {
		status = ""
	}
	list, err := svc.List(context.Background(), project.ID, status)
	if err != nil {
		return err
	}
	if !c.All {
		ctx.Println(tickets.ListMessage(project, list).Text)
		return nil
	}

	ctx.Println(HeaderStyle.Render(project.Name))
	for _, t := range list {
		state := WarningStyle.Render(string(t.Status))
		if t.Status == constants.TicketDone {
			state = DimStyle.Render(string(t.Status))
		}
		ctx.Printf("  %s %-5s %s\n", t.ID, state, t.Title)
	}
	return nil
}

type TicketDoneCmd struct {
	ID string `arg:"" help:"Ticket id."`
}

func (c *TicketDoneCmd) Run(ctx *Context) error {
	svc, err := ctx.tickets(context.Background())
	if err != nil {
		return err
	}
	t, err := svc.Complete(context.Background(), c.ID)
	if err != nil {
		return err
	}
	ctx.Println(tickets.DoneMessage(t).Text)
	return nil
}

type ProjectListCmd struct{}

func (c *ProjectListCmd) Run(ctx *Context) error {
	if len(ctx.Config.Projects) == 0 {
		ctx.Println("No projects configured. Add [[projects]] entries to " + ctx.Config.Path())
		return nil
	}
	for _, p := range ctx.Config.Projects {
		channel := ""
		if p.Channel != "" {
			channel = DimStyle.Render("#" + p.Channel)
		}
		ctx.Printf("  %-10s %s %s\n", p.ID, p.Name, channel)
	}
	return nil
}
