// Package bot routes chat messages, reactions and commands to the domain
// services.
package bot

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/julianstephens/lifeos/internal/calendar"
	"github.com/julianstephens/lifeos/internal/config"
	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/habits"
	"github.com/julianstephens/lifeos/internal/logger"
	"github.com/julianstephens/lifeos/internal/notifier"
	"github.com/julianstephens/lifeos/internal/tickets"
	"github.com/julianstephens/lifeos/internal/todos"
)

// Services is everything a handler may touch. It is replaced as a whole on
// reload.
type Services struct {
	Config   *config.Snapshot
	Todos    *todos.Service
	Habits   *habits.Service
	Tickets  *tickets.Service
	Calendar *calendar.Service
	Sink     notifier.Sink
}

// Message is an incoming chat message.
type Message struct {
	Channel string `json:"channel" binding:"required"`
	Text    string `json:"text" binding:"required"`
	FromBot bool   `json:"from_bot"`
}

// Reaction is an emoji added to a message.
type Reaction struct {
	Channel     string `json:"channel" binding:"required"`
	Emoji       string `json:"emoji" binding:"required"`
	MessageText string `json:"message_text"`
	FromBot     bool   `json:"from_bot"`
}

// Result is the bot's response to a message: a reaction to add to it and
// replies for its channel.
type Result struct {
	Reaction string             `json:"reaction,omitempty"`
	Replies  []notifier.Message `json:"replies,omitempty"`
}

type Bot struct {
	services atomic.Pointer[Services]
}

func New(s *Services) *Bot {
	b := &Bot{}
	b.services.Store(s)
	return b
}

// Swap installs a new set of services, e.g. after a configuration reload.
func (b *Bot) Swap(s *Services) {
	b.services.Store(s)
}

func (b *Bot) Services() *Services {
	return b.services.Load()
}

// isChannel reports whether got, a channel name or id, is the channel
// configured as want.
func isChannel(cfg *config.Snapshot, got, want string) bool {
	got = strings.TrimPrefix(strings.TrimSpace(got), "#")
	if strings.EqualFold(got, want) {
		return true
	}
	for _, d := range cfg.Destinations {
		if d.ID != "" && d.ID == got && strings.EqualFold(d.Name, want) {
			return true
		}
	}
	return false
}

// HandleMessage stores messages posted in the todo channel and runs
// "!"-prefixed commands anywhere.
func (b *Bot) HandleMessage(ctx context.Context, m Message) (Result, error) {
	if m.FromBot {
		return Result{}, nil
	}
	s := b.Services()
	text := strings.TrimSpace(m.Text)

	if name, args, ok := ParseCommand(text); ok {
		reply, err := b.Command(ctx, name, args)
		if err != nil {
			return Result{}, err
		}
		return Result{Replies: []notifier.Message{reply}}, nil
	}

	if text == "" || !isChannel(s.Config, m.Channel, s.Config.Channels.Todo) {
		return Result{}, nil
	}
	todo, err := s.Todos.Add(ctx, text)
	if err != nil {
		logger.Warn("Could not store todo", "error", err)
		return Result{}, err
	}
	logger.Info("Stored todo", "id", todo.ID, "type", todo.Type)
	return Result{Reaction: constants.ReactionPending}, nil
}

// HandleReaction records habit check-ins and completes todos.
func (b *Bot) HandleReaction(ctx context.Context, r Reaction) error {
	if r.FromBot {
		return nil
	}
	s := b.Services()
	cfg := s.Config

	if habit, ok := cfg.HabitByEmoji(r.Emoji); ok && isChannel(cfg, r.Channel, cfg.Channels.Checkin) {
		today := s.Habits.Today()
		if err := s.Habits.Mark(ctx, today, habit.Name, true); err != nil {
			return err
		}
		return s.Habits.Log(ctx, s.Sink, cfg.Channels.HabitLog, today, habit.Name, true)
	}

	if r.Emoji == constants.ReactionDone && isChannel(cfg, r.Channel, cfg.Channels.Todo) {
		todo, matched, err := s.Todos.CompleteMatching(ctx, r.MessageText)
		if err != nil {
			return err
		}
		if matched {
			logger.Info("Completed todo", "id", todo.ID)
		}
		return s.Sink.Send(ctx, cfg.Channels.Done, notifier.Textf("%s %s", constants.ReactionDone, r.MessageText))
	}
	return nil
}
