package tutor

import (
	"fmt"
	"strings"

	"github.com/abhisek/bandup/internal/protocol"
)

// TFNG answer literals. The collector accepts exactly these three values
// for true/false/not-given questions.
const (
	AnswerTrue     = "True"
	AnswerFalse    = "False"
	AnswerNotGiven = "Not Given"
)

// ValidationError reports an incomplete or ill-formed answer set. It is a
// local error: submission is blocked and nothing reaches the transcript.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid answers: " + e.Reason
}

// PendingQuestion is one interactive question awaiting an answer.
type PendingQuestion struct {
	Directive protocol.Directive
	Answer    string
}

// Answered reports whether the question has a non-empty answer.
func (q PendingQuestion) Answered() bool {
	return q.Answer != ""
}

// Collector tracks the live set of blank and true/false questions from the
// most recent tutor turn and the learner's in-progress answers. Each tutor
// turn is authoritative about what is currently being asked, so a reset
// discards any unanswered questions from the previous turn.
type Collector struct {
	pending []PendingQuestion
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Reset replaces the pending set with the questions from a fresh parse.
// Prior answers, including half-finished ones, are discarded.
func (c *Collector) Reset(directives []protocol.Directive) {
	c.pending = nil
	for _, d := range directives {
		if d.Kind == protocol.KindBlank || d.Kind == protocol.KindTrueFalseNotGiven {
			c.pending = append(c.pending, PendingQuestion{Directive: d})
		}
	}
}

// Pending returns the current question set in directive order.
func (c *Collector) Pending() []PendingQuestion {
	return c.pending
}

// Empty reports whether no questions are pending.
func (c *Collector) Empty() bool {
	return len(c.pending) == 0
}

// SetAnswer records the learner's answer for the question at index i.
// Blanks require non-empty text; true/false questions accept exactly
// the three TFNG literals.
func (c *Collector) SetAnswer(i int, value string) error {
	if i < 0 || i >= len(c.pending) {
		return &ValidationError{Reason: fmt.Sprintf("no question at index %d", i)}
	}

	q := &c.pending[i]
	switch q.Directive.Kind {
	case protocol.KindBlank:
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Reason: fmt.Sprintf("question %s needs a non-empty answer", q.Directive.ID)}
		}
	case protocol.KindTrueFalseNotGiven:
		if value != AnswerTrue && value != AnswerFalse && value != AnswerNotGiven {
			return &ValidationError{Reason: fmt.Sprintf("question %s must be True, False or Not Given", q.Directive.ID)}
		}
	}

	q.Answer = value
	return nil
}

// BuildSubmission formats the answer set as the next user turn. It fails
// with a ValidationError while any question is unanswered, leaving the
// pending set intact. On success the pending set is cleared: answers are
// consumed exactly once.
func (c *Collector) BuildSubmission() (string, error) {
	if len(c.pending) == 0 {
		return "", &ValidationError{Reason: "no questions to submit"}
	}

	for _, q := range c.pending {
		if !q.Answered() {
			return "", &ValidationError{Reason: fmt.Sprintf("question %s is unanswered", q.Directive.ID)}
		}
	}

	parts := make([]string, len(c.pending))
	for i, q := range c.pending {
		parts[i] = fmt.Sprintf("Question %s: %s", q.Directive.ID, q.Answer)
	}
	c.pending = nil

	return fmt.Sprintf(
		"Here are my answers: %s. Provide the review analysis (correct answer vs my answer, and why) for each before continuing.",
		strings.Join(parts, ", ")), nil
}
