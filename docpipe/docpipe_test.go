package docpipe

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/hazyhaar/word2quiz/horosafe"
)

// writeDocx builds a minimal .docx around the given w:body content.
func writeDocx(t *testing.T, path, body string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	fw, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>` + body + `</w:body>
</w:document>`))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()
}

func TestDetect(t *testing.T) {
	pipe := New(Config{})

	tests := []struct {
		path   string
		format Format
	}{
		{"quiz.docx", FormatDocx},
		{"QUIZ.DOCX", FormatDocx},
		{"quiz.html", FormatHTML},
		{"quiz.htm", FormatHTML},
		{"quiz.txt", FormatTXT},
	}

	for _, tt := range tests {
		f, err := pipe.Detect(tt.path)
		if err != nil {
			t.Errorf("Detect(%q): %v", tt.path, err)
			continue
		}
		if f != tt.format {
			t.Errorf("Detect(%q) = %q, want %q", tt.path, f, tt.format)
		}
	}

	for _, bad := range []string{"quiz.pdf", "quiz.odt", "quiz"} {
		if _, err := pipe.Detect(bad); err == nil {
			t.Errorf("Detect(%q): expected error", bad)
		}
	}
}

func TestExtractDocx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiz.docx")
	writeDocx(t, path, `
<w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t>Title: Filosofie</w:t></w:r></w:p>
<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Quiz: Week 1</w:t></w:r></w:p>
<w:p>
  <w:r><w:rPr><w:sz w:val="24"/></w:rPr><w:t xml:space="preserve">1) What is </w:t></w:r>
  <w:r><w:rPr><w:i/><w:sz w:val="24"/></w:rPr><w:t>2+2</w:t></w:r>
  <w:r><w:rPr><w:sz w:val="24"/></w:rPr><w:t>?</w:t></w:r>
</w:p>
<w:p><w:r><w:t>a) 3</w:t></w:r></w:p>
<w:p><w:r><w:t>b) !4 &amp; more</w:t></w:r></w:p>
<w:p><w:r><w:rPr><w:b w:val="0"/><w:u w:val="single"/></w:rPr><w:t>c) 5</w:t></w:r></w:p>
<w:p><w:r><w:rPr><w:sz w:val="21"/></w:rPr><w:t>d) 6</w:t></w:r><w:r><w:t>!</w:t></w:r></w:p>
<w:p></w:p>
`)

	doc, err := New(Config{}).Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != FormatDocx {
		t.Fatalf("format: got %s", doc.Format)
	}
	if doc.Title != "Title: Filosofie" {
		t.Errorf("title: got %q", doc.Title)
	}

	want := []string{
		"Title: Filosofie",
		"<b>Quiz: Week 1</b>",
		`<span style="font-size:12pt">1) What is <i>2+2</i>?</span>`,
		"a) 3",
		"b) !4 &amp; more",
		"<u>c) 5</u>",
		`<span style="font-size:10.5pt">d) 6</span>!`,
	}
	got := slices.Collect(doc.Texts())
	if !slices.Equal(got, want) {
		t.Fatalf("paragraphs:\n got %q\nwant %q", got, want)
	}
	if doc.Paragraphs[0].Level != 1 || doc.Paragraphs[0].Style != "Title" {
		t.Errorf("title paragraph: got %+v", doc.Paragraphs[0])
	}
}

func TestExtractDocxMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/styles.xml")
	fw.Write([]byte("<styles/>"))
	w.Close()

	_, err := New(Config{}).ExtractBytes(context.Background(), "quiz.docx", buf.Bytes())
	if err == nil || !strings.Contains(err.Error(), "word/document.xml") {
		t.Fatalf("expected missing document.xml error, got %v", err)
	}
}

func TestExtractDocxNotZip(t *testing.T) {
	_, err := New(Config{}).ExtractBytes(context.Background(), "quiz.docx", []byte("not a zip"))
	if err == nil {
		t.Fatal("expected error for non-zip docx")
	}
}

func TestExtractHTML(t *testing.T) {
	page := `<!DOCTYPE html>
<html><head><title>Quiz doc</title><style>p { margin: 0 }</style></head>
<body>
<h1>Filosofie</h1>
<p><b>Quiz: Week 1</b></p>
<p><span style="font-size:12pt; color:red">1) What is
 <a href="https://example.com">2+2</a>?</span></p>
<ul><li>a) 3</li><li>b) !4</li></ul>
<p style="display:none">hidden answer</p>
<p>   </p>
<script>var x = 1;</script>
</body></html>`

	doc, err := New(Config{}).ExtractBytes(context.Background(), "quiz.html", []byte(page))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Quiz doc" {
		t.Errorf("title: got %q", doc.Title)
	}
	got := slices.Collect(doc.Texts())
	if len(got) != 5 {
		t.Fatalf("paragraphs: got %d %q", len(got), got)
	}
	if got[0] != "Filosofie" || doc.Paragraphs[0].Level != 1 {
		t.Errorf("heading: got %q level %d", got[0], doc.Paragraphs[0].Level)
	}
	if got[1] != "<b>Quiz: Week 1</b>" {
		t.Errorf("bold paragraph: got %q", got[1])
	}
	q := got[2]
	if !strings.Contains(q, "font-size") || strings.Contains(q, "color") || strings.Contains(q, "href") {
		t.Errorf("sanitized question: got %q", q)
	}
	if stripMarkup(q) != "1) What is 2+2?" {
		t.Errorf("question text: got %q", stripMarkup(q))
	}
	if got[3] != "a) 3" || got[4] != "b) !4" {
		t.Errorf("list items: got %q", got[3:])
	}
}

func TestExtractText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiz.txt")
	os.WriteFile(path, []byte("Quiz: A\n\n1)   What?\r\n  a) x  \n"), 0644)

	doc, err := New(Config{}).Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Quiz: A", "1) What?", "a) x"}
	if got := slices.Collect(doc.Texts()); !slices.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractTooLarge(t *testing.T) {
	pipe := New(Config{MaxFileSize: 4})
	if _, err := pipe.ExtractBytes(context.Background(), "quiz.txt", []byte("1) too long")); err == nil {
		t.Fatal("expected size error")
	}

	path := filepath.Join(t.TempDir(), "quiz.txt")
	os.WriteFile(path, []byte("1) too long"), 0644)
	if _, err := pipe.Extract(context.Background(), path); err == nil {
		t.Fatal("expected size error from Extract")
	}
}

func TestExtractCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Config{}).ExtractBytes(ctx, "quiz.txt", []byte("a")); err == nil {
		t.Fatal("expected context error")
	}
}

func TestExtractRoot(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "quiz.txt"), []byte("1) Q?"), 0644)
	pipe := New(Config{Root: root})

	doc, err := pipe.Extract(context.Background(), "/quiz.txt")
	if err != nil {
		t.Fatalf("extract below root: %v", err)
	}
	if doc.Path != filepath.Join(root, "quiz.txt") {
		t.Errorf("path: got %q", doc.Path)
	}
	if _, err := pipe.Extract(context.Background(), "../quiz.txt"); !errors.Is(err, horosafe.ErrPathTraversal) {
		t.Errorf("expected traversal error, got %v", err)
	}
}

func TestExtractMissingFile(t *testing.T) {
	if _, err := New(Config{}).Extract(context.Background(), "/nonexistent/quiz.docx"); err == nil {
		t.Fatal("expected stat error")
	}
}

func TestTextsStopsEarly(t *testing.T) {
	doc := &Document{Paragraphs: []Paragraph{{Text: "a"}, {Text: "b"}, {Text: "c"}}}
	var seen []string
	for text := range doc.Texts() {
		seen = append(seen, text)
		if len(seen) == 2 {
			break
		}
	}
	if len(seen) != 2 {
		t.Fatalf("got %q", seen)
	}
}
