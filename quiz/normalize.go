package quiz

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var fontSizeDecl = regexp.MustCompile(`(?i)font-size\s*:\s*[^;"']*`)

// NormalizeSize rewrites the first font-size declaration found in a style
// attribute of fragment to size points. Everything else, text and other
// attributes included, is copied byte for byte. A fragment without such a
// declaration (a bare text run, or markup the tokenizer cannot use) is
// wrapped in a span carrying the size instead.
func NormalizeSize(fragment string, size int) string {
	decl := fmt.Sprintf("font-size:%dpt", size)

	z := html.NewTokenizer(strings.NewReader(fragment))
	var sb strings.Builder
	consumed := 0
	rewritten := false
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := string(z.Raw())
		consumed += len(raw)
		if !rewritten && (tt == html.StartTagToken || tt == html.SelfClosingTagToken) {
			if start, end, ok := styleValue(raw); ok {
				if loc := fontSizeDecl.FindStringIndex(raw[start:end]); loc != nil {
					sb.WriteString(raw[:start+loc[0]])
					sb.WriteString(decl)
					sb.WriteString(raw[start+loc[1]:])
					rewritten = true
					continue
				}
			}
		}
		sb.WriteString(raw)
	}
	if !rewritten {
		return `<span style="` + decl + `">` + fragment + `</span>`
	}
	if consumed < len(fragment) {
		sb.WriteString(fragment[consumed:])
	}
	return sb.String()
}

// styleValue returns the byte span of the style attribute value in a raw
// start tag. Other attribute values are skipped whole, so text that merely
// looks like a declaration inside them is never matched.
func styleValue(raw string) (start, end int, ok bool) {
	i := 1
	for i < len(raw) && !isTagSpace(raw[i]) && raw[i] != '>' && raw[i] != '/' {
		i++
	}
	for i < len(raw) {
		for i < len(raw) && (isTagSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			return 0, 0, false
		}
		nameStart := i
		for i < len(raw) && !isTagSpace(raw[i]) && raw[i] != '=' && raw[i] != '>' && raw[i] != '/' {
			i++
		}
		name := raw[nameStart:i]
		for i < len(raw) && isTagSpace(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] != '=' {
			continue
		}
		i++
		for i < len(raw) && isTagSpace(raw[i]) {
			i++
		}
		var vs, ve int
		if i < len(raw) && (raw[i] == '"' || raw[i] == '\'') {
			q := raw[i]
			vs = i + 1
			ve = strings.IndexByte(raw[vs:], q)
			if ve < 0 {
				return 0, 0, false
			}
			ve += vs
			i = ve + 1
		} else {
			vs = i
			for i < len(raw) && !isTagSpace(raw[i]) && raw[i] != '>' {
				i++
			}
			ve = i
		}
		if strings.EqualFold(name, "style") {
			return vs, ve, true
		}
	}
	return 0, 0, false
}

func isTagSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
