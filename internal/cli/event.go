package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/lifeos/internal/calendar"
	lerrors "github.com/julianstephens/lifeos/internal/errors"
)

type EventCmd struct {
	Add  EventAddCmd  `cmd:"" help:"Add a calendar event from a phrase."`
	List EventListCmd `cmd:"" help:"List upcoming events."`
}

func (c *Context) calendar(ctx context.Context) (*calendar.Service, error) {
	ids := calendar.IDs{Personal: c.Config.Calendars.Personal, Professional: c.Config.Calendars.Professional}
	return calendar.Open(ctx, c.Store, ids, c.Config.Location(), c.Config.Now)
}

type EventAddCmd struct {
	Text         []string `arg:"" help:"Event phrase, e.g. \"Tuesday 30th December 2025 at 8:00 PM team dinner\"."`
	Professional bool     `help:"Add to the professional calendar." short:"p"`
}

func (c *EventAddCmd) Run(ctx *Context) error {
	svc, err := ctx.calendar(context.Background())
	if err != nil {
		return err
	}

	text := strings.Join(c.Text, " ")
	if c.Professional {
		text = string(calendar.Professional) + " " + text
	}
	result, err := svc.AddFromText(context.Background(), text)
	if err != nil {
		if errors.Is(err, lerrors.ErrParseFailure) {
			return fmt.Errorf("error parsing event: %s", result.Error)
		}
		return err
	}
	ctx.Println(calendar.AddedMessage(*result.Event).Text)
	return nil
}

type EventListCmd struct {
	Days         int  `help:"How many days ahead to look." default:"2"`
	Professional bool `help:"List the professional calendar." short:"p"`
}

func (c *EventListCmd) Run(ctx *Context) error {
	if c.Days < 1 {
		return errors.New("--days must be at least 1")
	}
	svc, err := ctx.calendar(context.Background())
	if err != nil {
		return err
	}

	kind, title := calendar.Personal, "📅 **Personal Calendar"
	if c.Professional {
		kind, title = calendar.Professional, "💼 **Professional Calendar"
	}
	calendarID, err := svc.CalendarID(kind)
	if err != nil {
		return err
	}
	events, err := svc.Upcoming(context.Background(), calendarID, c.Days)
	if err != nil {
		return err
	}
	ctx.Println(calendar.FormatEvents(events, fmt.Sprintf("%s - Next %d Days**", title, c.Days)).Text)
	return nil
}
