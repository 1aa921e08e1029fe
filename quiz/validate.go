package quiz

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds carried by ValidationError. Match them with errors.Is.
var (
	ErrIncorrectNumberOfQuestions = errors.New("incorrect number of questions")
	ErrIncorrectAnswerMarking     = errors.New("incorrect answer marking")
)

// ValidationError describes the first structural or scoring violation found.
type ValidationError struct {
	Kind     error
	Section  string
	Question string   // empty for question-count failures
	Want     int
	Got      int
	Answers  []Answer // set for score failures
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrIncorrectNumberOfQuestions):
		return fmt.Sprintf("%v: quiz %q has %d questions, expected %d", e.Kind, e.Section, e.Got, e.Want)
	case e.Answers != nil:
		html := make([]string, len(e.Answers))
		for i, a := range e.Answers {
			html[i] = fmt.Sprintf("%s (%d)", a.HTML, a.Weight)
		}
		return fmt.Sprintf("%v: question %q in quiz %q scores %d, expected %d: %s",
			e.Kind, e.Question, e.Section, e.Got, e.Want, strings.Join(html, "; "))
	default:
		return fmt.Sprintf("%v: question %q in quiz %q has %d answers, expected %d",
			e.Kind, e.Question, e.Section, e.Got, e.Want)
	}
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// Validate checks every section of r and returns the first violation.
// expectedQuestions == 0 skips the per-section question count.
func Validate(r *Result, expectedQuestions int) error {
	for _, s := range r.Sections {
		if expectedQuestions != 0 && len(s.Questions) != expectedQuestions {
			return &ValidationError{
				Kind:    ErrIncorrectNumberOfQuestions,
				Section: s.Name,
				Want:    expectedQuestions,
				Got:     len(s.Questions),
			}
		}
		for _, q := range s.Questions {
			if len(q.Answers) != AnswersPerQuestion {
				return &ValidationError{
					Kind:     ErrIncorrectAnswerMarking,
					Section:  s.Name,
					Question: q.Text,
					Want:     AnswersPerQuestion,
					Got:      len(q.Answers),
				}
			}
			if score := q.Score(); score != FullScore {
				return &ValidationError{
					Kind:     ErrIncorrectAnswerMarking,
					Section:  s.Name,
					Question: q.Text,
					Want:     FullScore,
					Got:      score,
					Answers:  q.Answers,
				}
			}
		}
	}
	return nil
}
