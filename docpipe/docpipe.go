// Package docpipe extracts the paragraph stream of a quiz document.
//
// Supported formats:
//   - .docx  : Microsoft Word (archive/zip → word/document.xml, run formatting kept)
//   - .html  : HTML export (p, li and heading blocks, sanitized to inline markup)
//   - .txt   : Plain text (one paragraph per non-blank line)
//
// Usage:
//
//	pipe := docpipe.New(docpipe.Config{})
//	doc, err := pipe.Extract(ctx, "/path/to/quiz.docx")
//	res, err := quiz.Parse(doc.Texts(), quiz.Options{})
package docpipe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/word2quiz/horosafe"
)

// Pipeline is the document extraction engine.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// Detect returns the document format based on file extension.
func (p *Pipeline) Detect(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".docx":
		return FormatDocx, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".txt", ".text":
		return FormatTXT, nil
	default:
		return "", fmt.Errorf("unsupported format: %q", ext)
	}
}

// Extract reads a document from disk and returns its paragraphs.
func (p *Pipeline) Extract(ctx context.Context, path string) (*Document, error) {
	if p.cfg.Root != "" {
		resolved, err := horosafe.SafePath(p.cfg.Root, path)
		if err != nil {
			return nil, err
		}
		path = resolved
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), p.cfg.MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p.ExtractBytes(ctx, path, data)
}

// ExtractBytes extracts a document already held in memory. name is only
// used to detect the format and is reported as the document path.
func (p *Pipeline) ExtractBytes(ctx context.Context, name string, data []byte) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if int64(len(data)) > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", len(data), p.cfg.MaxFileSize)
	}

	format, err := p.Detect(name)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("extracting document", "path", name, "format", format)

	var title string
	var paras []Paragraph
	switch format {
	case FormatDocx:
		title, paras, err = extractDocx(data)
	case FormatHTML:
		title, paras, err = extractHTML(data)
	case FormatTXT:
		paras = extractText(data)
	default:
		return nil, fmt.Errorf("no parser for format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("extract %s (%s): %w", name, format, err)
	}
	if paras == nil {
		paras = []Paragraph{}
	}

	p.logger.Debug("document extracted", "path", name, "paragraphs", len(paras))
	return &Document{
		Path:       name,
		Format:     format,
		Title:      title,
		Paragraphs: paras,
	}, nil
}

// SupportedFormats returns all supported format extensions.
func SupportedFormats() []string {
	return []string{"docx", "html", "txt"}
}
