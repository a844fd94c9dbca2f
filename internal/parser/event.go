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

var (
	clockPattern   = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})(?:\s*([ap]m))?\b`)
	atClockPattern = regexp.MustCompile(`(?i)(?:\bat\s*)?\b\d{1,2}:\d{2}(?:\s*[ap]m)?\b`)
	weekdayPattern = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	tokenPattern   = regexp.MustCompile(`^[\s,]*([^\s,]+)`)
	ordinalPattern = regexp.MustCompile(`(?i)^(\d{1,2})(?:st|nd|rd|th)?\.?$`)
	yearPattern    = regexp.MustCompile(`^\d{4}$`)
	clockToken     = regexp.MustCompile(`(?i)^\d{1,2}:\d{2}([ap]m)?$`)
	meridiemToken  = regexp.MustCompile(`(?i)^[ap]m$`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// datePhrase is the weekday-led date description found in an event input.
type datePhrase struct {
	weekday time.Weekday
	day     int
	month   time.Month
	year    int
	end     int // byte offset just past the phrase
	start   int
}

// ParseEvent interprets an event phrase such as
// "Tuesday 30th December 2025 at 8:00 PM team dinner". It never panics; any
// failure is reported through the returned intent.
func ParseEvent(text string, now time.Time, loc *time.Location) (intent models.EventIntent) {
	defer func() {
		if r := recover(); r != nil {
			intent = failure(fmt.Sprint(r))
		}
	}()

	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	phrase, ok := scanDatePhrase(text)
	if !ok {
		return failure("could not find date in input")
	}

	date, ok := resolveDate(phrase, now)
	if !ok {
		return failure("could not parse date")
	}

	hour, minute := 0, 0
	if m, found := find(clockPattern, text); found {
		hour, minute, ok = clock(m)
		if !ok {
			return failure("could not parse date")
		}
	}

	title := collapse(atClockPattern.ReplaceAllString(text[phrase.end:], " "))
	if title == "" {
		title = collapse(atClockPattern.ReplaceAllString(text[:phrase.start], " "))
	}
	if title == "" {
		title = constants.DefaultEventTitle
	}

	return models.EventIntent{
		DateTime: time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc),
		Title:    title,
		Success:  true,
	}
}

func failure(reason string) models.EventIntent {
	return models.EventIntent{Success: false, Error: reason}
}

// scanDatePhrase finds the first weekday name and consumes the date words that
// follow it: ordinal days, month names, a year, filler words and an optional
// "at H:MM [AM|PM]".
func scanDatePhrase(text string) (datePhrase, bool) {
	m, ok := find(weekdayPattern, text)
	if !ok {
		return datePhrase{}, false
	}
	weekday, _ := utils.ParseWeekday(m.Groups[1])
	p := datePhrase{weekday: weekday, start: m.Start, end: m.End}

	pos := m.End
	for {
		tok, next, ok := nextToken(text, pos)
		if !ok {
			break
		}
		word := strings.TrimRight(strings.ToLower(tok), ".")

		switch {
		case p.day == 0 && ordinalPattern.MatchString(word):
			d, _ := strconv.Atoi(ordinalPattern.FindStringSubmatch(word)[1])
			p.day = d
		case p.year == 0 && yearPattern.MatchString(word):
			p.year, _ = strconv.Atoi(word)
		case p.month == 0 && monthNames[word] != 0:
			p.month = monthNames[word]
		case word == "of" || word == "the":
		case word == "at" || clockToken.MatchString(word):
			end, ok := consumeClock(text, pos)
			if ok {
				p.end = end
			}
			return p, true
		default:
			return p, true
		}

		p.end = next
		pos = next
	}
	return p, true
}

// consumeClock consumes "[at] H:MM [AM|PM]" starting at pos.
func consumeClock(text string, pos int) (int, bool) {
	tok, next, ok := nextToken(text, pos)
	if !ok {
		return 0, false
	}
	if strings.EqualFold(tok, "at") {
		tok, next, ok = nextToken(text, next)
		if !ok || !clockToken.MatchString(tok) {
			return 0, false
		}
	} else if !clockToken.MatchString(tok) {
		return 0, false
	}
	if mer, after, ok := nextToken(text, next); ok && meridiemToken.MatchString(mer) {
		next = after
	}
	return next, true
}

func nextToken(text string, pos int) (string, int, bool) {
	if pos >= len(text) {
		return "", pos, false
	}
	idx := tokenPattern.FindStringSubmatchIndex(text[pos:])
	if idx == nil {
		return "", pos, false
	}
	return text[pos+idx[2] : pos+idx[3]], pos + idx[1], true
}

// resolveDate turns a phrase into a calendar date. With an explicit day the
// missing month and year come from now and the weekday is not checked;
// otherwise the weekday's next occurrence on or after today is used.
func resolveDate(p datePhrase, now time.Time) (time.Time, bool) {
	if p.day == 0 {
		if p.month != 0 || p.year != 0 {
			return time.Time{}, false
		}
		return utils.NextWeekdayOnOrAfter(now, p.weekday), true
	}

	year, month := now.Year(), now.Month()
	if p.year != 0 {
		year = p.year
	}
	if p.month != 0 {
		month = p.month
	}

	date := time.Date(year, month, p.day, 0, 0, 0, 0, now.Location())
	if date.Day() != p.day || date.Month() != month {
		return time.Time{}, false
	}
	return date, true
}

// clock converts an H:MM [AM|PM] match to 24-hour values.
func clock(m Match) (int, int, bool) {
	hour, _ := strconv.Atoi(m.Groups[1])
	minute, _ := strconv.Atoi(m.Groups[2])
	if minute > 59 {
		return 0, 0, false
	}

	switch strings.ToLower(m.Groups[3]) {
	case "am":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return 0, 0, false
		}
	}
	return hour, minute, true
}
