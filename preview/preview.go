// Package preview renders parse output as Markdown for review before a quiz
// is imported: the assembled sections with their weights, or the raw
// classification of every paragraph.
package preview

import (
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/hazyhaar/word2quiz/quiz"
)

// Renderer converts question and answer HTML to Markdown.
type Renderer struct {
	logger *slog.Logger
	conv   *converter.Converter
}

// New creates a Renderer.
func New(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		logger: logger,
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

var tags = regexp.MustCompile(`<[^>]*>`)

// Inline converts one HTML fragment to single-line Markdown. When the
// conversion fails or yields nothing the tag-stripped text is returned.
func (r *Renderer) Inline(fragment string) string {
	fallback := strings.TrimSpace(html.UnescapeString(tags.ReplaceAllString(fragment, "")))
	if fragment == "" {
		return ""
	}
	md, err := r.conv.ConvertString(fragment)
	if err != nil {
		r.logger.Debug("preview: markdown conversion failed", "error", err)
		return fallback
	}
	md = strings.Join(strings.Fields(md), " ")
	if md == "" {
		return fallback
	}
	return md
}

// Markdown renders an assembled result. Correct answers are checked and
// every answer carries its weight.
func (r *Renderer) Markdown(res *quiz.Result) string {
	var sb strings.Builder
	if res.Title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", res.Title)
	}

	for _, sec := range res.Sections {
		name := sec.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(&sb, "## %s\n\n", name)
		for i, q := range sec.Questions {
			fmt.Fprintf(&sb, "**Q%d** %s\n\n", i+1, r.Inline(q.Text))
			for _, a := range q.Answers {
				box := " "
				if a.Weight > 0 {
					box = "x"
				}
				fmt.Fprintf(&sb, "- [%s] %s (%d)\n", box, r.Inline(a.HTML), a.Weight)
			}
			sb.WriteString("\n")
		}
	}

	if len(res.Unrecognized) > 0 {
		sb.WriteString("## Unrecognized\n\n")
		for _, u := range res.Unrecognized {
			fmt.Fprintf(&sb, "- %s\n", r.Inline(u))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// Lines renders the classification of every paragraph as a Markdown table
// with one row per line.
func (r *Renderer) Lines(lines []quiz.Line) (string, error) {
	var sb strings.Builder
	sb.WriteString("<table><thead><tr><th>#</th><th>category</th><th>rule</th><th>id</th><th>weight</th><th>text</th></tr></thead><tbody>")
	for i, l := range lines {
		text := l.Text
		if l.Category == quiz.CategoryUnrecognized {
			text = html.EscapeString(l.Raw)
		}
		fmt.Fprintf(&sb, "<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			i+1, l.Category, html.EscapeString(l.Rule), l.ID, strconv.Itoa(l.Weight), text)
	}
	sb.WriteString("</tbody></table>")

	md, err := r.conv.ConvertString(sb.String())
	if err != nil {
		return "", fmt.Errorf("preview: render lines: %w", err)
	}
	return strings.TrimSpace(md) + "\n", nil
}
