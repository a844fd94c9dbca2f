package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/julianstephens/lifeos/internal/calendar"
	"github.com/julianstephens/lifeos/internal/constants"
	lerrors "github.com/julianstephens/lifeos/internal/errors"
	"github.com/julianstephens/lifeos/internal/habits"
	"github.com/julianstephens/lifeos/internal/logger"
	"github.com/julianstephens/lifeos/internal/notifier"
	"github.com/julianstephens/lifeos/internal/tickets"
	"github.com/julianstephens/lifeos/internal/todos"
)

// CommandPrefix marks a chat message as a command.
const CommandPrefix = "!"

type commandFunc func(b *Bot, ctx context.Context, s *Services, args string) (notifier.Message, error)

type command struct {
	usage string
	help  string
	run   commandFunc
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":     {"!help", "list commands", (*Bot).help},
		"todos":    {"!todos", "pending todos by urgency", (*Bot).todos},
		"done":     {"!done <id>", "complete a todo", (*Bot).done},
		"habits":   {"!habits", "today's habit statuses", (*Bot).habits},
		"streak":   {"!streak <habit>", "current streak for a habit", (*Bot).streak},
		"addevent": {"!addevent [professional] <text>", "add a calendar event", (*Bot).addEvent},
		"events":   {"!events [days]", "upcoming events", (*Bot).events},
		"projects": {"!projects", "configured projects", (*Bot).projects},
		"ticket":   {"!ticket <project> <title>", "open a ticket", (*Bot).ticket},
		"tickets":  {"!tickets <project>", "open tickets for a project", (*Bot).tickets},
		"close":    {"!close <id>", "close a ticket", (*Bot).closeTicket},
	}
}

// ParseCommand splits "!name args" into its parts.
func ParseCommand(text string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, CommandPrefix) {
		return "", "", false
	}
	text = strings.TrimPrefix(text, CommandPrefix)
	name, args, _ = strings.Cut(text, " ")
	if name == "" {
		return "", "", false
	}
	return strings.ToLower(name), strings.TrimSpace(args), true
}

// Command runs the named command and returns its reply. Input problems are
// answered in the reply; only storage and delivery failures are returned.
func (b *Bot) Command(ctx context.Context, name, args string) (notifier.Message, error) {
	cmd, ok := commands[strings.ToLower(name)]
	if !ok {
		return notifier.Textf("❌ Unknown command `%s%s`. Try `!help`.", CommandPrefix, name), nil
	}
	s := b.Services()
	msg, err := cmd.run(b, ctx, s, args)
	if err == nil {
		return msg, nil
	}
	switch {
	case errors.Is(err, lerrors.ErrParseFailure),
		errors.Is(err, lerrors.ErrNotFound),
		errors.Is(err, lerrors.ErrConfigurationMissing):
		logger.Debug("Command rejected", "command", name, "error", err)
		return notifier.Textf("❌ %v", err), nil
	}
	logger.Error("Command failed", "command", name, "error", err)
	return notifier.Message{}, err
}

func usage(name string) error {
	return fmt.Errorf("%w: usage: %s", lerrors.ErrParseFailure, commands[name].usage)
}

func (b *Bot) help(context.Context, *Services, string) (notifier.Message, error) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("🤖 **Commands**\n\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "`%s` %s\n", commands[name].usage, commands[name].help)
	}
	return notifier.Message{Text: sb.String()}, nil
}

func (b *Bot) todos(ctx context.Context, s *Services, _ string) (notifier.Message, error) {
	ranked, err := s.Todos.Ranked(ctx)
	if err != nil {
		return notifier.Message{}, err
	}
	if msg, ok := todos.Digest(ranked); ok {
		return msg, nil
	}
	return notifier.Text("📝 No pending todos"), nil
}

func (b *Bot) done(ctx context.Context, s *Services, args string) (notifier.Message, error) {
	id, err := strconv.Atoi(args)
	if err != nil {
		return notifier.Message{}, usage("done")
	}
	todo, err := s.Todos.Complete(ctx, id)
	if err != nil {
		return notifier.Message{}, err
	}
	msg := notifier.Textf("%s %s", constants.ReactionDone, todo.Content)
	if err := s.Sink.Send(ctx, s.Config.Channels.Done, msg); err != nil {
		logger.Warn("Could not post completed todo", "id", id, "error", err)
	}
	return msg, nil
}

func (b *Bot) habits(ctx context.Context, s *Services, _ string) (notifier.Message, error) {
	today := s.Habits.Today()
	statuses, err := s.Habits.StatusOn(ctx, today)
	if err != nil {
		return notifier.Message{}, err
	}
	return habits.TodayMessage(today, statuses), nil
}

func (b *Bot) streak(ctx context.Context, s *Services, args string) (notifier.Message, error) {
	if args == "" {
		return notifier.Message{}, usage("streak")
	}
	habit, err := s.Habits.Find(args)
	if err != nil {
		return notifier.Message{}, err
	}
	n, err := s.Habits.Streak(ctx, habit.Name)
	if err != nil {
		return notifier.Message{}, err
	}
	return notifier.Textf("🔥 %s %s: %d days", habit.Emoji, habit.Name, n), nil
}

func (b *Bot) addEvent(ctx context.Context, s *Services, args string) (notifier.Message, error) {
	if args == "" {
		return notifier.Message{}, usage("addevent")
	}
	result, err := s.Calendar.AddFromText(ctx, args)
	switch {
	case err == nil:
		return calendar.AddedMessage(*result.Event), nil
	case errors.Is(err, lerrors.ErrConfigurationMissing):
		return notifier.Text("❌ Professional calendar not configured"), nil
	case errors.Is(err, lerrors.ErrParseFailure):
		return notifier.Textf("❌ Error parsing event: %s", result.Error), nil
	}
	return notifier.Message{}, err
}

func (b *Bot) events(ctx context.Context, s *Services, args string) (notifier.Message, error) {
	days := constants.DailyCalendarDays
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 1 {
			return notifier.Message{}, usage("events")
		}
		days = n
	}
	msgs, err := s.Calendar.Digest(ctx, days, fmt.Sprintf("Next %d Days", days))
	if err != nil && len(msgs) == 0 {
		return notifier.Message{}, err
	}
	texts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		texts = append(texts, m.Text)
	}
	return notifier.Message{Text: strings.Join(texts, "\n\n")}, nil
}

func (b *Bot) projects(_ context.Context, s *Services, _ string) (notifier.Message, error) {
	ps := s.Tickets.Projects()
	if len(ps) == 0 {
		return notifier.Text("_No projects configured_"), nil
	}
	var sb strings.Builder
	sb.WriteString("🗂️ **Projects**\n\n")
	for _, p := range ps {
		fmt.Fprintf(&sb, "`%s` %s\n", p.ID, p.Name)
	}
	return notifier.Message{Text: sb.String()}, nil
}

func (b *Bot) ticket(ctx context.Context, s *Services, args string) (notifier.Message, error) {
	key, title, _ := strings.Cut(args, " ")
	if key == "" || strings.TrimSpace(title) == "" {
		return notifier.Message{}, usage("ticket")
	}
	project, err := s.Tickets.Project(key)
	if err != nil {
		return notifier.Message{}, err
	}
	t, err := s.Tickets.Create(ctx, project.ID, title)
	if err != nil {
		return notifier.Message{}, err
	}
	msg := tickets.CreatedMessage(project, t)
	if project.Channel != "" {
		if err := s.Sink.Send(ctx, project.Channel, msg); err != nil {
			logger.Warn("Could not post ticket to project channel", "project", project.ID, "error", err)
		}
	}
	return msg, nil
}

func (b *Bot) tickets(ctx context.Context, s *Services, args string) (notifier.Message, error) {
	if args == "" {
		return notifier.Message{}, usage("tickets")
	}
	project, err := s.Tickets.Project(args)
	if err != nil {
		return notifier.Message{}, err
	}
	open, err := s.Tickets.List(ctx, project.ID, constants.TicketOpen)
	if err != nil {
		return notifier.Message{}, err
	}
	return tickets.ListMessage(project, open), nil
}

func (b *Bot) closeTicket(ctx context.Context, s *Services, args string) (notifier.Message, error) {
	if args == "" {
		return notifier.Message{}, usage("close")
	}
	t, err := s.Tickets.Complete(ctx, args)
	if err != nil {
		return notifier.Message{}, err
	}
	return tickets.DoneMessage(t), nil
}
