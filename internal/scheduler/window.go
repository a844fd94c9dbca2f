package scheduler

import (
	"sync"
	"time"
)

// Window remembers keys for a fixed horizon. It suppresses duplicate
// reminders without growing forever.
type Window struct {
	mu      sync.Mutex
	horizon time.Duration
	seen    map[string]time.Time
}

func NewWindow(horizon time.Duration) *Window {
	return &Window{horizon: horizon, seen: map[string]time.Time{}}
}

// Seen reports whether key was recorded within the horizon and records it
// at now if not.
func (w *Window) Seen(key string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if first, ok := w.seen[key]; ok && now.Sub(first) < w.horizon {
		return true
	}
	w.seen[key] = now
	return false
}

// Sweep evicts keys first seen more than the horizon before now and
// returns how many were removed.
func (w *Window) Sweep(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	removed := 0
	for key, first := range w.seen {
		if now.Sub(first) >= w.horizon {
			delete(w.seen, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of remembered keys.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}
