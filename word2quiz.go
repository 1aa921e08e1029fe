// Package word2quiz converts formatted quiz documents into validated
// multiple-choice sections.
//
// The pipeline:
//
//	docx/html/txt → docpipe (paragraphs as inline HTML) → quiz.Parse → quizstore
//
// Usage:
//
//	svc, err := word2quiz.New(cfg, logger)
//	defer svc.Close()
//	res, err := svc.ParseFile(ctx, "week1.docx", quiz.Options{})
//	run, err := svc.SaveFile(ctx, "week1.docx", quiz.Options{})
//	svc.RegisterMCP(mcpServer)
//	http.ListenAndServe(cfg.HTTPAddr, svc.Handler())
package word2quiz

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"

	"github.com/hazyhaar/word2quiz/docpipe"
	"github.com/hazyhaar/word2quiz/idgen"
	"github.com/hazyhaar/word2quiz/preview"
	"github.com/hazyhaar/word2quiz/quiz"
	"github.com/hazyhaar/word2quiz/quizstore"
)

// Service wires document extraction, parsing, preview and run storage.
type Service struct {
	cfg     *Config
	logger  *slog.Logger
	pipe    *docpipe.Pipeline
	store   *quizstore.Store
	preview *preview.Renderer
}

// New creates a Service and opens the run database at cfg.DBPath.
func New(cfg *Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.defaults()
	if err := cfg.check(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	s, err := quizstore.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &Service{
		cfg:     cfg,
		logger:  logger,
		pipe:    docpipe.New(docpipe.Config{MaxFileSize: cfg.MaxFileSize, Root: cfg.DocsRoot, Logger: logger}),
		store:   s,
		preview: preview.New(logger),
	}, nil
}

// Close closes the run database.
func (s *Service) Close() error {
	return s.store.Close()
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return *s.cfg
}

// options fills zero fields of o from the configuration.
func (s *Service) options(o quiz.Options) quiz.Options {
	if o.ExpectedQuestions == 0 {
		o.ExpectedQuestions = s.cfg.ExpectedQuestions
	}
	if o.NormalizeFontSize == 0 {
		o.NormalizeFontSize = s.cfg.NormalizeFontSize
	}
	o.Logger = s.logger
	return o
}

// Extract returns the paragraph stream of a document file.
func (s *Service) Extract(ctx context.Context, path string) (*docpipe.Document, error) {
	return s.pipe.Extract(ctx, path)
}

// ParseFile extracts and parses a document. Zero fields of opts fall back
// to the configuration. A structural failure is a *quiz.ValidationError.
func (s *Service) ParseFile(ctx context.Context, path string, opts quiz.Options) (*quiz.Result, error) {
	doc, err := s.pipe.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.parse(doc, opts)
}

// ParseBytes parses a document held in memory. name selects the format.
func (s *Service) ParseBytes(ctx context.Context, name string, data []byte, opts quiz.Options) (*quiz.Result, error) {
	doc, err := s.pipe.ExtractBytes(ctx, name, data)
	if err != nil {
		return nil, err
	}
	return s.parse(doc, opts)
}

func (s *Service) parse(doc *docpipe.Document, opts quiz.Options) (*quiz.Result, error) {
	res, err := quiz.Parse(doc.Texts(), s.options(opts))
	if err != nil {
		s.logger.Warn("word2quiz: parse failed", "source", doc.Path, "error", err)
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(doc.Path), err)
	}
	return res, nil
}

// ClassifyFile returns the classification of every paragraph of a document
// without assembling it. size > 0 normalizes question and answer text.
func (s *Service) ClassifyFile(ctx context.Context, path string, size int) ([]quiz.Line, error) {
	doc, err := s.pipe.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.classify(doc.Texts(), size), nil
}

// ClassifyBytes is ClassifyFile for a document held in memory.
func (s *Service) ClassifyBytes(ctx context.Context, name string, data []byte, size int) ([]quiz.Line, error) {
	doc, err := s.pipe.ExtractBytes(ctx, name, data)
	if err != nil {
		return nil, err
	}
	return s.classify(doc.Texts(), size), nil
}

func (s *Service) classify(paragraphs iter.Seq[string], size int) []quiz.Line {
	if size == 0 {
		size = s.cfg.NormalizeFontSize
	}
	lines := quiz.ClassifyAll(paragraphs, size)
	if lines == nil {
		lines = []quiz.Line{}
	}
	return lines
}

// Preview renders a document for review: the classification table followed
// by the assembled sections. A validation failure is returned alongside the
// table so the offending paragraphs can be located.
func (s *Service) Preview(ctx context.Context, path string, opts quiz.Options) (string, error) {
	doc, err := s.pipe.Extract(ctx, path)
	if err != nil {
		return "", err
	}
	opts = s.options(opts)

	table, err := s.preview.Lines(s.classify(doc.Texts(), opts.NormalizeFontSize))
	if err != nil {
		return "", err
	}
	res, err := s.parse(doc, opts)
	if err != nil {
		return table, err
	}
	return table + "\n" + s.preview.Markdown(res), nil
}

// SaveFile parses a document and stores the result as a new run. Nothing is
// stored when parsing fails.
func (s *Service) SaveFile(ctx context.Context, path string, opts quiz.Options) (*quizstore.Run, error) {
	doc, err := s.pipe.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, doc, opts)
}

// SaveBytes is SaveFile for a document held in memory.
func (s *Service) SaveBytes(ctx context.Context, name string, data []byte, opts quiz.Options) (*quizstore.Run, error) {
	doc, err := s.pipe.ExtractBytes(ctx, name, data)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, doc, opts)
}

func (s *Service) save(ctx context.Context, doc *docpipe.Document, opts quiz.Options) (*quizstore.Run, error) {
	opts = s.options(opts)
	res, err := s.parse(doc, opts)
	if err != nil {
		return nil, err
	}
	run := &quizstore.Run{
		Source:            filepath.Base(doc.Path),
		ExpectedQuestions: opts.ExpectedQuestions,
		NormalizeFontSize: opts.NormalizeFontSize,
		Result:            res,
	}
	if err := s.store.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}
	s.logger.Info("word2quiz: run saved", "id", run.ID, "source", run.Source,
		"sections", run.SectionCount, "questions", run.QuestionCount)
	return run, nil
}

// Run loads a stored run. It returns nil, nil when the id is unknown.
func (s *Service) Run(ctx context.Context, id string) (*quizstore.Run, error) {
	id, err := idgen.Parse(id)
	if err != nil {
		return nil, err
	}
	return s.store.GetRun(ctx, id)
}

// Runs lists the most recent runs, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]*quizstore.Run, error) {
	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []*quizstore.Run{}
	}
	return runs, nil
}

// DeleteRun removes a stored run. It reports whether the run existed.
func (s *Service) DeleteRun(ctx context.Context, id string) (bool, error) {
	id, err := idgen.Parse(id)
	if err != nil {
		return false, err
	}
	return s.store.DeleteRun(ctx, id)
}
