package quiz

import (
	"errors"
	"strings"
	"testing"
)

func fourAnswers(weights ...int) []Answer {
	as := make([]Answer, len(weights))
	for i, w := range weights {
		as[i] = Answer{HTML: string(rune('a' + i)), Weight: w}
	}
	return as
}

func TestValidate(t *testing.T) {
	good := Question{Text: "Q", Answers: fourAnswers(0, 100, 0, 0)}

	tests := []struct {
		name     string
		result   *Result
		expected int
		kind     error
		got      int
	}{
		{"empty", &Result{}, 3, nil, 0},
		{"count ok", &Result{Sections: []Section{{Name: "A", Questions: []Question{good, good}}}}, 2, nil, 0},
		{"count skipped", &Result{Sections: []Section{{Name: "A", Questions: []Question{good}}}}, 0, nil, 0},
		{"count wrong", &Result{Sections: []Section{{Name: "A", Questions: []Question{good}}}}, 2, ErrIncorrectNumberOfQuestions, 1},
		{"three answers", &Result{Sections: []Section{{Name: "A", Questions: []Question{
			{Text: "Q", Answers: fourAnswers(100, 0, 0)},
		}}}}, 0, ErrIncorrectAnswerMarking, 3},
		{"two correct", &Result{Sections: []Section{{Name: "A", Questions: []Question{
			{Text: "Q", Answers: fourAnswers(100, 100, 0, 0)},
		}}}}, 0, ErrIncorrectAnswerMarking, 200},
		{"none correct", &Result{Sections: []Section{{Name: "A", Questions: []Question{
			{Text: "Q", Answers: fourAnswers(0, 0, 0, 0)},
		}}}}, 0, ErrIncorrectAnswerMarking, 0},
		{"split weights", &Result{Sections: []Section{{Name: "A", Questions: []Question{
			{Text: "Q", Answers: fourAnswers(50, 50, 0, 0)},
		}}}}, 0, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.result, tt.expected)
			if tt.kind == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.kind) {
				t.Fatalf("got %v, want %v", err, tt.kind)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("not a *ValidationError: %T", err)
			}
			if verr.Got != tt.got {
				t.Errorf("Got = %d, want %d", verr.Got, tt.got)
			}
		})
	}
}

func TestValidationErrorMessages(t *testing.T) {
	count := &ValidationError{Kind: ErrIncorrectNumberOfQuestions, Section: "Week 1", Want: 6, Got: 5}
	if msg := count.Error(); !strings.Contains(msg, `"Week 1"`) || !strings.Contains(msg, "expected 6") {
		t.Errorf("count message: %s", msg)
	}

	score := &ValidationError{
		Kind: ErrIncorrectAnswerMarking, Section: "Week 1", Question: "Q1",
		Want: FullScore, Got: 200, Answers: fourAnswers(100, 100, 0, 0),
	}
	if msg := score.Error(); !strings.Contains(msg, "scores 200") || !strings.Contains(msg, "a (100)") {
		t.Errorf("score message: %s", msg)
	}

	answers := &ValidationError{Kind: ErrIncorrectAnswerMarking, Section: "Week 1", Question: "Q1", Want: 4, Got: 3}
	if msg := answers.Error(); !strings.Contains(msg, "has 3 answers") {
		t.Errorf("answer count message: %s", msg)
	}
}
