package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/todos"
	"github.com/julianstephens/lifeos/internal/urgency"
)

type TodoCmd struct {
	Add  TodoAddCmd  `cmd:"" help:"Add a todo written in natural language."`
	List TodoListCmd `cmd:"" help:"List pending todos by urgency."`
	Done TodoDoneCmd `cmd:"" help:"Mark a todo as done."`
}

func (c *Context) todos(ctx context.Context) (*todos.Service, error) {
	return todos.Open(ctx, c.Store, c.Config.Now)
}

type TodoAddCmd struct {
	Text []string `arg:"" help:"Todo text, e.g. \"call mom every-tuesday-21:00 tag:family\"."`
}

func (c *TodoAddCmd) Run(ctx *Context) error {
	svc, err := ctx.todos(context.Background())
	if err != nil {
		return err
	}
	todo, err := svc.Add(context.Background(), strings.Join(c.Text, " "))
	if err != nil {
		return err
	}

	ctx.Printf("%s Added todo %d: %s\n", constants.ReactionPending, todo.ID, todo.Content)
	details := []string{string(todo.Type)}
	if todo.Frequency != "" {
		details = append(details, todo.Frequency)
	}
	if due := todos.DueLabel(todo); due != "" {
		details = append(details, "due "+due)
	}
	ctx.Println(DimStyle.Render("   " + strings.Join(details, " · ")))
	return nil
}

type TodoListCmd struct {
	All bool `help:"Include completed todos."`
}

func (c *TodoListCmd) Run(ctx *Context) error {
	svc, err := ctx.todos(context.Background())
	if err != nil {
		return err
	}

	if c.All {
		all, err := svc.List(context.Background(), "")
		if err != nil {
			return err
		}
		if len(all) == 0 {
			ctx.Println("No todos found.")
			return nil
		}
		for _, t := range all {
			status := DimStyle.Render("[" + string(t.Status) + "]")
			if t.IsPending() {
				status = WarningStyle.Render("[" + string(t.Status) + "]")
			}
			ctx.Printf("  %3d %s %s\n", t.ID, status, t.Content)
		}
		return nil
	}

	ranked, err := svc.Ranked(context.Background())
	if err != nil {
		return err
	}
	if len(ranked) == 0 {
		ctx.Println("No pending todos.")
		return nil
	}

	ctx.Println(HeaderStyle.Render("Todos by urgency"))
	for _, r := range ranked {
		line := fmt.Sprintf("%s %3d  %-3d %s", urgency.Indicator(r.Tier), r.Todo.ID, r.Score, r.Todo.Content)
		ctx.Printf("  %s", TierStyle(r.Tier).Render(line))
		if due := todos.DueLabel(r.Todo); due != "" {
			ctx.Printf(" %s", DimStyle.Render("(due "+due+")"))
		}
		ctx.Println()
	}
	return nil
}

type TodoDoneCmd struct {
	ID int `arg:"" help:"Todo id as shown by 'todo list'."`
}

func (c *TodoDoneCmd) Run(ctx *Context) error {
	svc, err := ctx.todos(context.Background())
	if err != nil {
		return err
	}
	todo, err := svc.Complete(context.Background(), c.ID)
	if err != nil {
		return err
	}
	ctx.Printf("%s %s\n", constants.ReactionDone, SuccessStyle.Render(todo.Content))
	return nil
}
