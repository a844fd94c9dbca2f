// Package notifier delivers formatted messages to named destinations.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lerrors "github.com/julianstephens/lifeos/internal/errors"
)

// EmbedField is one name/value pair inside an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Embed is a structured card rendered under the message text.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      string       `json:"-"`
}

// Message is plain text, an embed, or both.
type Message struct {
	Text  string `json:"text"`
	Embed *Embed `json:"embed,omitempty"`
	// Replace asks transports that can edit history to remove the previous
	// Replace message sent to the same destination once this one is posted.
	Replace bool `json:"-"`
}

// Text builds a text-only message.
func Text(text string) Message {
	return Message{Text: text}
}

// Textf builds a text-only message from a format string.
func Textf(format string, args ...any) Message {
	return Message{Text: fmt.Sprintf(format, args...)}
}

// Plain flattens the message for transports that cannot render embeds.
func (m Message) Plain() string {
	parts := []string{}
	if m.Text != "" {
		parts = append(parts, m.Text)
	}
	if e := m.Embed; e != nil {
		if e.Title != "" {
			parts = append(parts, e.Title)
		}
		if e.Description != "" {
			parts = append(parts, e.Description)
		}
		for _, f := range e.Fields {
			parts = append(parts, f.Name+": "+f.Value)
		}
		if e.Footer != "" {
			parts = append(parts, e.Footer)
		}
	}
	return strings.Join(parts, "\n")
}

// Destination is a configured place messages can be sent to. ID is the stable
// identifier; Name is the human name used by older configuration.
type Destination struct {
	ID      string `toml:"id" json:"id,omitempty"`
	Name    string `toml:"name" json:"name"`
	Webhook string `toml:"webhook" json:"-"` // optional; the keyring is preferred
}

// Sink sends a message to a destination named by id or name.
type Sink interface {
	Send(ctx context.Context, destination string, msg Message) error
}

// Transport delivers to an already resolved destination.
type Transport interface {
	Deliver(ctx context.Context, dest Destination, msg Message) error
}

// Router resolves destinations and hands messages to a transport.
type Router struct {
	destinations []Destination
	transport    Transport
}

func NewRouter(destinations []Destination, transport Transport) *Router {
	return &Router{destinations: destinations, transport: transport}
}

// Resolve looks key up by id first and falls back to a case-insensitive name match.
func (r *Router) Resolve(key string) (Destination, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Destination{}, fmt.Errorf("%w: empty destination", lerrors.ErrNotFound)
	}
	for _, d := range r.destinations {
		if d.ID != "" && d.ID == key {
			return d, nil
		}
	}
	for _, d := range r.destinations {
		if strings.EqualFold(d.Name, key) {
			return d, nil
		}
	}
	return Destination{}, fmt.Errorf("%w: destination %q", lerrors.ErrNotFound, key)
}

// Send implements Sink.
func (r *Router) Send(ctx context.Context, destination string, msg Message) error {
	dest, err := r.Resolve(destination)
	if err != nil {
		return err
	}
	if err := r.transport.Deliver(ctx, dest, msg); err != nil {
		return lerrors.IO("send to "+dest.Name, err)
	}
	return nil
}

// Multi delivers to every transport and reports all failures together.
type Multi []Transport

func (m Multi) Deliver(ctx context.Context, dest Destination, msg Message) error {
	var errs []error
	for _, t := range m {
		if err := t.Deliver(ctx, dest, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
