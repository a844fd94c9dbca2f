package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/models"
	"github.com/julianstephens/lifeos/internal/utils"
)

// Rule is one unit of the todo grammar.
//
// Patterns only accept values the rule can honor (no 25:00, no every-0-days),
// so a match decides the scan. Apply fills in the intent and returns false only
// for values it still cannot represent, such as a count that overflows int;
// the fragment then stays in the content and no later rule is tried.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Apply   func(m Match, now time.Time, intent *models.TodoIntent) bool
}

// Find reports the first match of the rule's pattern in text.
func (r Rule) Find(text string) (Match, bool) {
	return find(r.Pattern, text)
}

// TodoRules is the ordered, mutually exclusive part of the todo grammar.
var TodoRules = []Rule{
	{
		Name:    "weekly-at",
		Pattern: regexp.MustCompile(`(?i)\bevery-(monday|tuesday|wednesday|thursday|friday|saturday|sunday)-([01]?\d|2[0-3]):([0-5]\d)\b`),
		Apply:   applyWeeklyAt,
	},
	{
		Name:    "daily",
		Pattern: regexp.MustCompile(`(?i)\b(?:every-day|daily)\b`),
		Apply:   applyDaily,
	},
	{
		Name:    "every-n",
		Pattern: regexp.MustCompile(`(?i)\bevery-(0*[1-9]\d*)-(days?|weeks?|months?)\b`),
		Apply:   applyEveryN,
	},
	{
		Name:    "in-n",
		Pattern: regexp.MustCompile(`(?i)\bin-(\d+)-(days?|weeks?|months?)\b`),
		Apply:   applyInN,
	},
	{
		Name:    "deadline",
		Pattern: regexp.MustCompile(`(?i)\bdeadline(?::\s*|\s+)(\d{4}-\d{2}-\d{2})\b`),
		Apply:   applyDeadline,
	},
}

func applyWeeklyAt(m Match, now time.Time, intent *models.TodoIntent) bool {
	weekday, ok := utils.ParseWeekday(m.Groups[1])
	if !ok {
		return false
	}
	hour, _ := strconv.Atoi(m.Groups[2])
	minute, _ := strconv.Atoi(m.Groups[3])

	intent.Type = constants.TodoRecurring
	intent.Frequency = fmt.Sprintf("every-%s-%02d:%02d", weekday, hour, minute)
	intent.NextDue = utils.NextWeekdayOccurrence(now, weekday, hour, minute).Format(constants.DateTimeFormat)
	return true
}

func applyDaily(_ Match, now time.Time, intent *models.TodoIntent) bool {
	intent.Type = constants.TodoRecurring
	intent.Frequency = constants.FrequencyDaily
	intent.NextDue = utils.FormatDate(now)
	return true
}

func applyEveryN(m Match, now time.Time, intent *models.TodoIntent) bool {
	n, unit, ok := interval(m)
	if !ok || n < 1 {
		return false
	}
	intent.Type = constants.TodoRecurring
	intent.Frequency = fmt.Sprintf("every-%d-%s", n, strings.ToLower(m.Groups[2]))
	intent.NextDue = utils.FormatDate(utils.AddInterval(now, n, unit))
	return true
}

func applyInN(m Match, now time.Time, intent *models.TodoIntent) bool {
	n, unit, ok := interval(m)
	if !ok {
		return false
	}
	due := utils.FormatDate(utils.AddInterval(now, n, unit))
	intent.Type = constants.TodoFuture
	intent.Deadline = due
	intent.NextDue = due
	return true
}

func applyDeadline(m Match, _ time.Time, intent *models.TodoIntent) bool {
	// A date like 2025-02-30 is dropped but the fragment still counts as matched.
	if _, err := time.Parse(constants.DateFormat, m.Groups[1]); err == nil {
		intent.Deadline = m.Groups[1]
	}
	return true
}

func interval(m Match) (int, utils.IntervalUnit, bool) {
	n, err := strconv.Atoi(m.Groups[1])
	if err != nil {
		return 0, "", false
	}
	unit, ok := utils.ParseIntervalUnit(m.Groups[2])
	return n, unit, ok
}

// ParsePriority returns the priority named in text, if any, and the match.
func ParsePriority(text string) (constants.Priority, Match, bool) {
	m, ok := find(priorityPattern, text)
	if !ok {
		return "", Match{}, false
	}
	return constants.Priority(strings.ToLower(m.Groups[1])), m, true
}
