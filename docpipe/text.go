package docpipe

import "strings"

// extractText treats every non-blank line of a plain text file as one
// paragraph. Lines are taken verbatim apart from whitespace folding, so a
// hand-written file may carry the same inline markup as a converted one.
func extractText(data []byte) []Paragraph {
	var paras []Paragraph
	for _, line := range strings.Split(string(data), "\n") {
		text := strings.Join(strings.Fields(line), " ")
		if text == "" {
			continue
		}
		paras = append(paras, Paragraph{Text: text})
	}
	return paras
}
