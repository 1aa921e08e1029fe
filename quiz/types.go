// Package quiz turns a stream of formatted paragraphs into quiz sections.
//
// Each paragraph is classified against an ordered rule table (see Rules),
// fed to an Assembler that tracks section/question/answer boundaries, and
// the assembled Result is validated before it is returned:
//
//	res, err := quiz.Parse(doc.Texts(), quiz.Options{ExpectedQuestions: 6})
//	var verr *quiz.ValidationError
//	if errors.As(err, &verr) { ... }
package quiz

import (
	"fmt"
	"strconv"
)

// FullScore is the total the answer weights of one question must sum to.
const FullScore = 100

// AnswersPerQuestion is the exact number of answers every question carries.
const AnswersPerQuestion = 4

// Category is the kind of paragraph a rule recognizes.
type Category int

const (
	CategoryUnrecognized Category = iota
	CategoryTitle
	CategoryQuizName
	CategoryPageRef
	CategoryQuestion
	CategoryAnswer
)

var categoryNames = [...]string{
	CategoryUnrecognized: "unrecognized",
	CategoryTitle:        "title",
	CategoryQuizName:     "quizname",
	CategoryPageRef:      "pageref",
	CategoryQuestion:     "question",
	CategoryAnswer:       "answer",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "category(" + strconv.Itoa(int(c)) + ")"
	}
	return categoryNames[c]
}

// MarshalText renders the category by name in JSON output.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ID is the numbering token of a classified line: a question number or an
// answer letter. The zero value means the line carried no id.
type ID struct {
	Number int  `json:"number,omitempty"`
	Letter rune `json:"letter,omitempty"`
}

// IsZero reports whether no id was captured.
func (id ID) IsZero() bool { return id.Number == 0 && id.Letter == 0 }

func (id ID) String() string {
	switch {
	case id.Number != 0:
		return strconv.Itoa(id.Number)
	case id.Letter != 0:
		return string(id.Letter)
	}
	return ""
}

// Line is the classification of one paragraph.
type Line struct {
	Category Category `json:"category"`
	Rule     string   `json:"rule,omitempty"`
	ID       ID       `json:"id"`
	Weight   int      `json:"weight"`
	Text     string   `json:"text"`
	Raw      string   `json:"raw"`
}

// Answer is one answer of a question.
type Answer struct {
	HTML   string `json:"html"`
	Weight int    `json:"weight"`
}

// Question is a question with its answers in document order.
type Question struct {
	Text    string   `json:"text"`
	Answers []Answer `json:"answers"`
}

// Score is the sum of the answer weights.
func (q Question) Score() int {
	total := 0
	for _, a := range q.Answers {
		total += a.Weight
	}
	return total
}

// Section is one quiz: a name plus questions numbered from 1.
type Section struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Result is the output of Parse.
type Result struct {
	Title        string    `json:"title,omitempty"`
	Sections     []Section `json:"sections"`
	Unrecognized []string  `json:"unrecognized"`
}

// QuestionCount returns the total number of questions over all sections.
func (r *Result) QuestionCount() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Questions)
	}
	return n
}

func (r *Result) String() string {
	return fmt.Sprintf("%d sections, %d questions, %d unrecognized",
		len(r.Sections), r.QuestionCount(), len(r.Unrecognized))
}
