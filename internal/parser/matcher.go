// Package parser turns free-text chat input into structured todo and event intents.
//
// The todo grammar is an ordered list of independent rules. Each rule owns one
// regular expression and one pure apply step; the interpreter evaluates them in
// order and honors only the first that applies. Tags and priority are extracted
// independently of that scan.
package parser

import (
	"regexp"
	"strings"
)

var (
	tagPattern      = regexp.MustCompile(`(?i)\btag:(\w+)`)
	priorityPattern = regexp.MustCompile(`(?i)\bpriority[:=](high|medium|low)\b`)
)

// Match is one fragment found in the input.
type Match struct {
	Start, End int
	Groups     []string // Groups[0] is the whole fragment
}

// Text returns the full matched fragment.
func (m Match) Text() string {
	return m.Groups[0]
}

// find returns the first match of re in text.
func find(re *regexp.Regexp, text string) (Match, bool) {
	idx := re.FindStringSubmatchIndex(text)
	if idx == nil {
		return Match{}, false
	}
	groups := make([]string, len(idx)/2)
	for i := range groups {
		if idx[2*i] >= 0 {
			groups[i] = text[idx[2*i]:idx[2*i+1]]
		}
	}
	return Match{Start: idx[0], End: idx[1], Groups: groups}, true
}

// ExtractTags returns every tag:<word> in text, lowercased, in order of
// appearance. Duplicates are kept.
func ExtractTags(text string) []string {
	tags := []string{}
	for _, m := range tagPattern.FindAllStringSubmatch(text, -1) {
		tags = append(tags, strings.ToLower(m[1]))
	}
	return tags
}

// StripTags removes every tag:<word> fragment from text.
func StripTags(text string) string {
	return tagPattern.ReplaceAllString(text, "")
}

// StripPriorities removes every priority fragment from text. Only the first
// one sets the priority.
func StripPriorities(text string) string {
	return priorityPattern.ReplaceAllString(text, " ")
}

// cut removes m's span from text.
func cut(text string, m Match) string {
	return text[:m.Start] + " " + text[m.End:]
}

// collapse squeezes runs of whitespace into single spaces and trims the ends.
func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
