package quiz

import (
	"iter"
	"strings"
)

// Classify matches a trimmed, non-empty paragraph against the rule table.
// When size > 0, question and answer text is rewritten to that font size.
// A paragraph no rule accepts comes back as CategoryUnrecognized with its
// text untouched.
func Classify(para string, size int) Line {
	for _, r := range rules {
		sub := r.Pattern.FindStringSubmatch(para)
		if sub == nil {
			continue
		}
		m := r.extract(sub)
		line := Line{
			Category: r.Category,
			Rule:     r.Name,
			ID:       ID{Number: m.number, Letter: m.letter},
			Raw:      para,
		}
		switch r.Category {
		case CategoryTitle, CategoryQuizName:
			line.Text = stripTags(m.text)
		case CategoryQuestion, CategoryAnswer:
			text := m.prefix + m.text + m.suffix
			if size > 0 && r.Normalize {
				text = NormalizeSize(text, size)
			}
			line.Text = text
			if m.correct {
				line.Weight = FullScore
			}
		}
		return line
	}
	return Line{Category: CategoryUnrecognized, Raw: para, Text: para}
}

// ClassifyAll classifies every non-empty paragraph of a stream, in order.
func ClassifyAll(paragraphs iter.Seq[string], size int) []Line {
	var lines []Line
	for p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		lines = append(lines, Classify(p, size))
	}
	return lines
}
