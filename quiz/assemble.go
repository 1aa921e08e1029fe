package quiz

import "log/slog"

// State is the position of the Assembler in the paragraph stream.
type State int

const (
	// StateIdle: no quiz name and no question seen yet.
	StateIdle State = iota
	// StateInSection: a quiz name is known but no question is open.
	StateInSection
	// StateInQuestion: a question is open and has no pending answers.
	StateInQuestion
	// StateInAnswerRun: answers are accumulating for the open question.
	StateInAnswerRun
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInSection:
		return "in-section"
	case StateInQuestion:
		return "in-question"
	case StateInAnswerRun:
		return "in-answer-run"
	}
	return "unknown"
}

// Assembler builds sections from classified lines fed in document order.
// It looks back exactly one token: an answer run stays open until the next
// question or quiz name closes it.
type Assembler struct {
	logger *slog.Logger
	state  State
	result Result

	quizName    string // last quiz name seen
	sectionName string // quiz name bound to the open section
	sections    int    // sections started by a question numbered 1

	questions []Question // closed questions of the open section
	current   *Question
	answers   []Answer
}

// NewAssembler returns an Assembler in StateIdle.
func NewAssembler(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{logger: logger}
}

// State reports the current state.
func (a *Assembler) State() State { return a.state }

// Feed advances the state machine by one line.
func (a *Assembler) Feed(l Line) {
	switch l.Category {
	case CategoryUnrecognized:
		a.unrecognized(l.Raw)

	case CategoryPageRef:
		a.logger.Debug("quiz: page reference dropped", "raw", l.Raw)

	case CategoryTitle:
		if a.result.Title == "" {
			a.result.Title = l.Text
		}

	case CategoryQuizName:
		a.closeAnswerRun()
		a.quizName = l.Text
		if a.state == StateIdle {
			a.state = StateInSection
		}

	case CategoryQuestion:
		a.closeAnswerRun()
		a.closeQuestion()
		if l.ID.Number == 1 {
			if a.sections > 0 || len(a.questions) > 0 {
				a.closeSection(a.sectionName)
			}
			a.sectionName = a.quizName
			a.sections++
		}
		a.current = &Question{Text: l.Text}
		a.state = StateInQuestion

	case CategoryAnswer:
		if a.current == nil {
			a.logger.Debug("quiz: answer before any question", "raw", l.Raw)
			a.unrecognized(l.Raw)
			return
		}
		a.answers = append(a.answers, Answer{HTML: l.Text, Weight: l.Weight})
		a.state = StateInAnswerRun
	}
}

// Finish closes the open question and section and returns the result.
// The Assembler is reset to StateIdle.
func (a *Assembler) Finish() *Result {
	a.closeAnswerRun()
	a.closeQuestion()
	if a.sections > 0 || len(a.questions) > 0 {
		// The last section takes the last quiz name seen, even one that
		// arrived after its question 1.
		a.closeSection(a.quizName)
	}
	res := a.result
	if res.Sections == nil {
		res.Sections = []Section{}
	}
	if res.Unrecognized == nil {
		res.Unrecognized = []string{}
	}
	*a = Assembler{logger: a.logger}
	return &res
}

func (a *Assembler) unrecognized(raw string) {
	a.logger.Debug("quiz: paragraph not recognized", "raw", raw)
	a.result.Unrecognized = append(a.result.Unrecognized, raw)
}

func (a *Assembler) closeAnswerRun() {
	if a.state != StateInAnswerRun {
		return
	}
	a.current.Answers = append(a.current.Answers, a.answers...)
	a.answers = nil
	a.state = StateInQuestion
}

func (a *Assembler) closeQuestion() {
	if a.current == nil {
		return
	}
	a.questions = append(a.questions, *a.current)
	a.current = nil
}

func (a *Assembler) closeSection(name string) {
	a.result.Sections = append(a.result.Sections, Section{Name: name, Questions: a.questions})
	a.questions = nil
	a.state = StateInSection
}
