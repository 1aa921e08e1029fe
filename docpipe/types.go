package docpipe

import "iter"

// Format identifies a document type.
type Format string

const (
	FormatDocx Format = "docx"
	FormatHTML Format = "html"
	FormatTXT  Format = "txt"
)

// Paragraph is one block of a document. Text carries the restricted inline
// vocabulary only: <b>, <i>, <u> and font-size spans.
type Paragraph struct {
	Text  string `json:"text"`
	Style string `json:"style,omitempty"` // docx paragraph style or HTML tag
	Level int    `json:"level,omitempty"` // heading level 1-6, 0 for body
}

// Document is the result of extracting a file.
type Document struct {
	Path       string      `json:"path"`
	Format     Format      `json:"format"`
	Title      string      `json:"title,omitempty"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

// Texts yields the paragraph texts in document order.
func (d *Document) Texts() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, p := range d.Paragraphs {
			if !yield(p.Text) {
				return
			}
		}
	}
}
