package quiz

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
)

// Options configures Parse.
type Options struct {
	// ExpectedQuestions is the number of questions every section must have.
	// 0 disables the check.
	ExpectedQuestions int `json:"expected_questions" yaml:"expected_questions"`

	// NormalizeFontSize rewrites question and answer text to this point
	// size. 0 leaves the formatting as found.
	NormalizeFontSize int `json:"normalize_fontsize" yaml:"normalize_fontsize"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (o *Options) defaults() {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

func (o *Options) check() error {
	if o.ExpectedQuestions < 0 {
		return fmt.Errorf("quiz: expected questions must not be negative, got %d", o.ExpectedQuestions)
	}
	if o.NormalizeFontSize < 0 {
		return fmt.Errorf("quiz: normalize font size must not be negative, got %d", o.NormalizeFontSize)
	}
	return nil
}

// Parse classifies and assembles the paragraphs, then validates the result.
// Blank paragraphs are skipped. On a validation failure no result is
// returned; the error is a *ValidationError.
func Parse(paragraphs iter.Seq[string], opts Options) (*Result, error) {
	if err := opts.check(); err != nil {
		return nil, err
	}
	opts.defaults()

	a := NewAssembler(opts.Logger)
	for p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		a.Feed(Classify(p, opts.NormalizeFontSize))
	}
	res := a.Finish()

	if err := Validate(res, opts.ExpectedQuestions); err != nil {
		return nil, err
	}
	opts.Logger.Info("quiz: parsed",
		"sections", len(res.Sections),
		"questions", res.QuestionCount(),
		"unrecognized", len(res.Unrecognized))
	return res, nil
}

// ParseStrings is Parse over a slice.
func ParseStrings(paragraphs []string, opts Options) (*Result, error) {
	return Parse(slices.Values(paragraphs), opts)
}
