package docpipe

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var hiddenStylePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)display\s*:\s*none`),
	regexp.MustCompile(`(?i)visibility\s*:\s*hidden`),
	regexp.MustCompile(`(?i)font-size\s*:\s*0[^1-9.]`),
}

func hasHiddenStyle(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == "style" {
			for _, pat := range hiddenStylePatterns {
				if pat.MatchString(a.Val + ";") {
					return true
				}
			}
		}
	}
	return false
}

// inlinePolicy keeps the inline vocabulary the quiz grammar understands and
// drops every other element while keeping its text.
var inlinePolicy = newInlinePolicy()

func newInlinePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "u", "strong", "em", "span", "font")
	p.AllowStyles("font-size").
		Matching(regexp.MustCompile(`^\d+(\.\d+)?pt$`)).
		OnElements("span")
	p.AllowAttrs("size").
		Matching(regexp.MustCompile(`^\d+$`)).
		OnElements("font")
	return p
}

// extractHTML returns the block-level paragraphs of an HTML document, each
// rendered as sanitized inline HTML.
func extractHTML(data []byte) (string, []Paragraph, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}

	var paras []Paragraph
	extractHTMLNodes(doc, &paras)

	title := findHTMLTitle(doc)
	if title == "" {
		for _, p := range paras {
			if p.Level > 0 {
				title = html.UnescapeString(stripMarkup(p.Text))
				break
			}
		}
	}
	return title, paras, nil
}

// findHTMLTitle extracts the <title> text.
func findHTMLTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findHTMLTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// extractHTMLNodes walks the DOM and emits one paragraph per text block.
func extractHTMLNodes(n *html.Node, paras *[]Paragraph) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Head:
			return
		}
		if hasHiddenStyle(n) {
			return
		}

		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			appendBlock(n, int(n.Data[1]-'0'), paras)
			return
		case atom.P, atom.Li:
			appendBlock(n, 0, paras)
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractHTMLNodes(c, paras)
	}
}

func appendBlock(n *html.Node, level int, paras *[]Paragraph) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasHiddenStyle(c) {
			continue
		}
		if err := html.Render(&buf, c); err != nil {
			return
		}
	}
	text := strings.TrimSpace(collapseSpace(inlinePolicy.Sanitize(buf.String())))
	if text == "" {
		return
	}
	*paras = append(*paras, Paragraph{Text: text, Style: n.Data, Level: level})
}

var markup = regexp.MustCompile(`<[^>]*>`)

func stripMarkup(s string) string {
	return strings.TrimSpace(markup.ReplaceAllString(s, ""))
}

// collapseSpace folds runs of whitespace (HTML source line breaks) to one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
