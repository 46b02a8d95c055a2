package tutor

import (
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/bandup/internal/protocol"
)

func TestCollectorResetKeepsOnlyQuestions(t *testing.T) {
	c := NewCollector()
	c.Reset([]protocol.Directive{
		{Kind: protocol.KindBlank, ID: "1"},
		{Kind: protocol.KindPassage, Body: "some passage"},
		{Kind: protocol.KindTrueFalseNotGiven, ID: "2", Statement: "Tea is old."},
		{Kind: protocol.KindCorrection, Correction: protocol.Correction{Original: "a", Corrected: "b"}},
	})

	pending := c.Pending()
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].Directive.Kind != protocol.KindBlank || pending[1].Directive.Kind != protocol.KindTrueFalseNotGiven {
		t.Fatalf("pending kinds = %v, %v", pending[0].Directive.Kind, pending[1].Directive.Kind)
	}
}

func TestCollectorResetDiscardsPreviousAnswers(t *testing.T) {
	c := NewCollector()
	c.Reset([]protocol.Directive{{Kind: protocol.KindBlank, ID: "1"}})
	if err := c.SetAnswer(0, "evaporation"); err != nil {
		t.Fatal(err)
	}

	c.Reset([]protocol.Directive{{Kind: protocol.KindBlank, ID: "1"}})
	if c.Pending()[0].Answered() {
		t.Fatal("answer survived a reset")
	}
}

func TestCollectorSetAnswerValidation(t *testing.T) {
	c := NewCollector()
	c.Reset([]protocol.Directive{
		{Kind: protocol.KindBlank, ID: "1"},
		{Kind: protocol.KindTrueFalseNotGiven, ID: "2", Statement: "Tea is old."},
	})

	var verr *ValidationError
	if err := c.SetAnswer(0, "   "); !errors.As(err, &verr) {
		t.Fatalf("blank answer of whitespace: got %v, want ValidationError", err)
	}
	if err := c.SetAnswer(1, "true"); !errors.As(err, &verr) {
		t.Fatalf("lowercase tfng literal: got %v, want ValidationError", err)
	}
	if err := c.SetAnswer(1, "Maybe"); !errors.As(err, &verr) {
		t.Fatalf("invalid tfng literal: got %v, want ValidationError", err)
	}
	if err := c.SetAnswer(5, AnswerTrue); !errors.As(err, &verr) {
		t.Fatalf("out-of-range index: got %v, want ValidationError", err)
	}

	if err := c.SetAnswer(0, "evaporation"); err != nil {
		t.Fatal(err)
	}
	for _, lit := range []string{AnswerTrue, AnswerFalse, AnswerNotGiven} {
		if err := c.SetAnswer(1, lit); err != nil {
			t.Fatalf("literal %q rejected: %v", lit, err)
		}
	}
}

func TestCollectorBuildSubmissionBlocksWhileIncomplete(t *testing.T) {
	c := NewCollector()
	c.Reset([]protocol.Directive{
		{Kind: protocol.KindBlank, ID: "1"},
		{Kind: protocol.KindBlank, ID: "2"},
		{Kind: protocol.KindTrueFalseNotGiven, ID: "3", Statement: "s"},
	})
	_ = c.SetAnswer(0, "first")
	_ = c.SetAnswer(1, "second")

	var verr *ValidationError
	if _, err := c.BuildSubmission(); !errors.As(err, &verr) {
		t.Fatalf("incomplete submission: got %v, want ValidationError", err)
	}

	// The pending set and the answers already given must survive the failure.
	pending := c.Pending()
	if len(pending) != 3 {
		t.Fatalf("pending = %d after failed submission, want 3", len(pending))
	}
	if pending[0].Answer != "first" || pending[1].Answer != "second" {
		t.Fatal("answers were lost by a failed submission")
	}
}

func TestCollectorBuildSubmissionConsumesAnswers(t *testing.T) {
	c := NewCollector()
	c.Reset([]protocol.Directive{
		{Kind: protocol.KindBlank, ID: "1"},
		{Kind: protocol.KindTrueFalseNotGiven, ID: "2", Statement: "s"},
	})
	_ = c.SetAnswer(0, "photosynthesis")
	_ = c.SetAnswer(1, AnswerNotGiven)

	text, err := c.BuildSubmission()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Question 1: photosynthesis") ||
		!strings.Contains(text, "Question 2: Not Given") {
		t.Fatalf("submission text = %q", text)
	}
	if !c.Empty() {
		t.Fatal("pending set not cleared after submission")
	}

	var verr *ValidationError
	if _, err := c.BuildSubmission(); !errors.As(err, &verr) {
		t.Fatalf("empty submission: got %v, want ValidationError", err)
	}
}
