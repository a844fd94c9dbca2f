// Package urgency ranks stored todos by how pressing they are.
//
// A score blends how often a todo recurs with how close its deadline is. The
// scorer is pure: the same todo and the same day always give the same score.
package urgency

import (
	"slices"
	"strings"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/utils"
)

type frequencyWeight struct {
	token string
	score int
}

// frequencyTable is scanned in order; the first token found in the frequency wins.
var frequencyTable = []frequencyWeight{
	{"daily", 100},
	{"every-1-day", 100},
	{"every-friday", 80},
	{"every-saturday", 50},
	{"every-sunday", 50},
	{"every-monday", 70},
	{"every-tuesday", 70},
	{"every-wednesday", 70},
	{"every-thursday", 70},
	{"every-1-week", 70},
	{"every-2-week", 50},
	{"every-1-month", 30},
}

// FrequencyScore returns the recurrence weight of a todo, 0 unless it recurs.
func FrequencyScore(todo models.Todo) int {
	if todo.Type != constants.TodoRecurring || todo.Frequency == "" {
		return 0
	}
	freq := strings.ToLower(todo.Frequency)
	for _, w := range frequencyTable {
		if strings.Contains(freq, w.token) {
			return w.score
		}
	}
	return 0
}

// DeadlineScore returns the proximity weight of the todo's deadline, falling
// back to its next due date when the deadline is missing or unparseable.
// Scores 0 when neither parses.
func DeadlineScore(todo models.Todo, today time.Time) int {
	due, ok := parseDay(todo.Deadline)
	if !ok {
		if due, ok = parseDay(todo.NextDue); !ok {
			return 0
		}
	}

	days := utils.DaysBetween(today, due)
	switch {
	case days <= 0:
		return 100
	case days == 1:
		return 95
	case days <= 3:
		return 80
	case days <= 7:
		return 60
	case days <= 14:
		return 40
	case days <= 30:
		return 20
	default:
		return 5
	}
}

// parseDay reads the leading YYYY-MM-DD of value.
func parseDay(value string) (time.Time, bool) {
	if len(value) > len(constants.DateFormat) {
		value = value[:len(constants.DateFormat)]
	}
	t, err := time.Parse(constants.DateFormat, value)
	return t, err == nil
}

// Score returns the todo's urgency in [0, 100]: 40% frequency, 60% deadline,
// truncated toward zero.
func Score(todo models.Todo, today time.Time) int {
	return (4*FrequencyScore(todo) + 6*DeadlineScore(todo, today)) / 10
}

// TierFor maps a score to its display tier.
func TierFor(score int) constants.UrgencyTier {
	switch {
	case score >= 80:
		return constants.TierHigh
	case score >= 50:
		return constants.TierMedium
	default:
		return constants.TierLow
	}
}

// Indicator returns the emoji shown next to a todo of the given tier.
func Indicator(tier constants.UrgencyTier) string {
	switch tier {
	case constants.TierHigh:
		return "🔴"
	case constants.TierMedium:
		return "🟠"
	default:
		return "🟢"
	}
}

// Ranked is a todo with its computed urgency.
type Ranked struct {
	Todo  models.Todo
	Score int
	Tier  constants.UrgencyTier
}

// Rank scores every todo and orders them by descending score, ties broken by id.
func Rank(todos []models.Todo, today time.Time) []Ranked {
	ranked := make([]Ranked, 0, len(todos))
	for _, t := range todos {
		s := Score(t, today)
		ranked = append(ranked, Ranked{Todo: t, Score: s, Tier: TierFor(s)})
	}
	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return a.Todo.ID - b.Todo.ID
	})
	return ranked
}
