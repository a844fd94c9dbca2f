package models

// Habit is a tracked habit, keyed by the emoji used to check it off.
// Habits come from the configuration snapshot and are not persisted.
type Habit struct {
	Emoji string `toml:"emoji" json:"emoji"`
	Name  string `toml:"name" json:"name"`
	Label string `toml:"label" json:"label,omitempty"` // check-in prompt, e.g. "Morning walk + water"
}

// HabitRecord is one day's outcome for one habit. Unique per (Date, Habit).
type HabitRecord struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Habit     string `json:"habit"`
	Completed bool   `json:"completed"`
}

// HabitCount is a habit's completed-day count over a reporting period.
type HabitCount struct {
	Habit Habit
	Count int
	Days  int
}
