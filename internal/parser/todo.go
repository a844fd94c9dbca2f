package parser

import (
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/models"
)

// ParseTodo interprets a raw todo message. now fixes "today" for every
// relative computation, so equal inputs and equal now give equal intents.
func ParseTodo(text string, now time.Time) models.TodoIntent {
	intent := models.TodoIntent{
		Type:     constants.TodoOneTime,
		Priority: constants.PriorityMedium,
		Tags:     ExtractTags(text),
	}

	content := StripTags(text)

	if p, _, ok := ParsePriority(content); ok {
		intent.Priority = p
		content = StripPriorities(content)
	}

	for _, rule := range TodoRules {
		m, ok := rule.Find(content)
		if !ok {
			continue
		}
		if rule.Apply(m, now, &intent) {
			content = cut(content, m)
		}
		break
	}

	intent.Content = collapse(content)
	return intent
}
