package models

import "time"

// EventIntent is the outcome of parsing a one-off calendar event phrase.
// On failure Success is false and Error carries a human-readable reason.
type EventIntent struct {
	DateTime time.Time `json:"datetime"`
	Title    string    `json:"title"`
	Success  bool      `json:"success"`
	Error    string    `json:"error,omitempty"`
}

// CalendarEvent is an event stored in a calendar.
type CalendarEvent struct {
	ID         string    `json:"id"`
	CalendarID string    `json:"calendar_id"`
	Title      string    `json:"title"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	CreatedAt  time.Time `json:"created_at"`
}

// AllDay reports whether the event starts at midnight with no explicit time.
func (e CalendarEvent) AllDay() bool {
	return e.Start.Hour() == 0 && e.Start.Minute() == 0
}

// EventResult mirrors the calendar collaborator's {success, event|error} shape.
type EventResult struct {
	Success bool           `json:"success"`
	Event   *CalendarEvent `json:"event,omitempty"`
	Error   string         `json:"error,omitempty"`
}
