package docpipe

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// runFormat is the inline formatting of a w:r element.
type runFormat struct {
	bold      bool
	italic    bool
	underline bool
	size      string // points, "" when the run does not set w:sz
}

type run struct {
	format runFormat
	text   string
}

// docxParser walks word/document.xml and renders every w:p as a paragraph
// of inline HTML.
type docxParser struct {
	stack []string

	inPara bool
	style  string
	runs   []run

	inRun   bool
	format  runFormat
	runText strings.Builder

	title string
	paras []Paragraph
}

// extractDocx parses a .docx archive by reading word/document.xml.
func extractDocx(data []byte) (string, []Paragraph, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("open zip: %w", err)
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	p := &docxParser{}
	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			p.start(t)
			p.stack = append(p.stack, t.Name.Local)
		case xml.EndElement:
			if len(p.stack) > 0 {
				p.stack = p.stack[:len(p.stack)-1]
			}
			p.end(t.Name.Local)
		case xml.CharData:
			if p.inRun && p.parent() == "t" {
				p.runText.Write(t)
			}
		}
	}
	return p.title, p.paras, nil
}

func (p *docxParser) parent() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

func (p *docxParser) start(t xml.StartElement) {
	switch t.Name.Local {
	case "p":
		p.inPara = true
		p.style = ""
		p.runs = nil
	case "pStyle":
		if p.inPara && p.parent() == "pPr" {
			p.style = attrVal(t, "val")
		}
	case "r":
		if p.inPara {
			p.inRun = true
			p.format = runFormat{}
			p.runText.Reset()
		}
	case "b":
		if p.inRun && p.parent() == "rPr" {
			p.format.bold = toggleOn(attrVal(t, "val"))
		}
	case "i":
		if p.inRun && p.parent() == "rPr" {
			p.format.italic = toggleOn(attrVal(t, "val"))
		}
	case "u":
		if p.inRun && p.parent() == "rPr" {
			v := attrVal(t, "val")
			p.format.underline = v != "none" && toggleOn(v)
		}
	case "sz":
		if p.inRun && p.parent() == "rPr" {
			p.format.size = halfPoints(attrVal(t, "val"))
		}
	case "tab", "br":
		if p.inRun {
			p.runText.WriteByte(' ')
		}
	}
}

func (p *docxParser) end(local string) {
	switch local {
	case "r":
		if p.inRun {
			if text := p.runText.String(); text != "" {
				p.runs = append(p.runs, run{format: p.format, text: text})
			}
			p.inRun = false
		}
	case "p":
		if !p.inPara {
			return
		}
		p.inPara = false
		text := strings.TrimSpace(renderRuns(p.runs))
		if text == "" {
			return
		}
		level := docxHeadingLevel(p.style)
		if level > 0 && p.title == "" {
			p.title = plainText(p.runs)
		}
		p.paras = append(p.paras, Paragraph{Text: text, Style: p.style, Level: level})
	}
}

// renderRuns merges adjacent runs with equal formatting and renders them as
// inline HTML. A font size shared by every run wraps the whole paragraph
// once instead of each run.
func renderRuns(runs []run) string {
	var merged []run
	for _, r := range runs {
		if n := len(merged); n > 0 && merged[n-1].format == r.format {
			merged[n-1].text += r.text
			continue
		}
		merged = append(merged, r)
	}
	if len(merged) == 0 {
		return ""
	}

	common := merged[0].format.size
	for _, r := range merged[1:] {
		if r.format.size != common {
			common = ""
			break
		}
	}

	var sb strings.Builder
	if common != "" {
		sb.WriteString(sizeOpen(common))
	}
	for _, r := range merged {
		f := r.format
		if common != "" {
			f.size = ""
		}
		if f.size != "" {
			sb.WriteString(sizeOpen(f.size))
		}
		if f.bold {
			sb.WriteString("<b>")
		}
		if f.italic {
			sb.WriteString("<i>")
		}
		if f.underline {
			sb.WriteString("<u>")
		}
		sb.WriteString(textEscaper.Replace(r.text))
		if f.underline {
			sb.WriteString("</u>")
		}
		if f.italic {
			sb.WriteString("</i>")
		}
		if f.bold {
			sb.WriteString("</b>")
		}
		if f.size != "" {
			sb.WriteString("</span>")
		}
	}
	if common != "" {
		sb.WriteString("</span>")
	}
	return sb.String()
}

func plainText(runs []run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.text)
	}
	return strings.TrimSpace(sb.String())
}

// textEscaper escapes only what would otherwise read as markup.
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func sizeOpen(pt string) string {
	return `<span style="font-size:` + pt + `pt">`
}

// halfPoints converts a w:sz value (half-points) to points.
func halfPoints(v string) string {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return ""
	}
	return strconv.FormatFloat(float64(n)/2, 'f', -1, 64)
}

// toggleOn interprets an OOXML on/off attribute; absent means on.
func toggleOn(v string) bool {
	switch strings.ToLower(v) {
	case "0", "false", "off":
		return false
	}
	return true
}

func attrVal(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// docxHeadingLevel extracts the heading level from a paragraph style name.
// e.g. "Heading1" → 1, "Heading2" → 2, "Title" → 1, etc.
func docxHeadingLevel(style string) int {
	lower := strings.ToLower(style)

	if lower == "title" {
		return 1
	}
	if lower == "subtitle" {
		return 2
	}

	for _, prefix := range []string{"heading", "kop", "titre", "überschrift"} {
		if strings.HasPrefix(lower, prefix) {
			rest := lower[len(prefix):]
			if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
				return int(rest[0] - '0')
			}
		}
	}
	return 0
}
