// Package protocol parses the directive markup the tutor embeds in its
// free-text turns: fill-in blanks, true/false/not-given statements, reading
// passages, inline corrections, hidden listening scripts, and the session
// terminal marker. Parsing is a pure function of the input text; malformed
// or unterminated tags degrade to literal prose instead of failing.
package protocol

// Kind identifies a directive variant.
type Kind int

const (
	// KindBlank is a numbered fill-in-blank, e.g. [BLANK:3].
	KindBlank Kind = iota
	// KindTrueFalseNotGiven is a numbered statement to judge,
	// e.g. [TFNG:1:Tea originated in Yunnan].
	KindTrueFalseNotGiven
	// KindPassage is a delimited reading passage,
	// [PASSAGE]...[/PASSAGE].
	KindPassage
	// KindCorrection is an inline writing correction,
	// [CORRECTION:category|original|corrected|explanation].
	KindCorrection
)

// Terminal is the literal the tutor emits to conclude a session. It is
// stripped from displayed prose; its presence drives the Complete
// transition.
const Terminal = "SESSION_COMPLETE"

// CorrectionCategory is the fixed enumeration of correction kinds. Tokens
// carrying any other category are passed through as literal prose.
type CorrectionCategory string

const (
	CategoryGrammar     CorrectionCategory = "grammar"
	CategoryVocabulary  CorrectionCategory = "vocabulary"
	CategoryCohesion    CorrectionCategory = "cohesion"
	CategoryPunctuation CorrectionCategory = "punctuation"
)

func validCategory(s string) bool {
	switch CorrectionCategory(s) {
	case CategoryGrammar, CategoryVocabulary, CategoryCohesion, CategoryPunctuation:
		return true
	}
	return false
}

// Correction is the payload of a KindCorrection directive.
type Correction struct {
	Category    CorrectionCategory
	Original    string
	Corrected   string
	Explanation string
}

// Directive is one structured instruction extracted from tutor text.
// Fields beyond Kind are populated per variant.
type Directive struct {
	Kind       Kind
	ID         string // blank, true/false
	Statement  string // true/false
	Body       string // passage
	Correction Correction
}

// SegmentKind distinguishes plain prose from passage bodies so the caller
// can render passages in their own frame.
type SegmentKind int

const (
	SegmentProse SegmentKind = iota
	SegmentPassage
)

// Segment is one run of display text.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Result is the outcome of parsing one tutor turn.
type Result struct {
	// Directives lists every recognized directive in source order.
	Directives []Directive
	// Segments is the residual display text, passage bodies separated
	// from surrounding prose. Directive tokens are replaced by short
	// placeholders or removed.
	Segments []Segment
	// Scripts holds [SCRIPT] bodies, hidden from display but spoken
	// aloud for listening practice.
	Scripts []string
	// Terminal reports whether the terminal marker appeared anywhere.
	Terminal bool
}

// Display returns the concatenated display text of all segments.
func (r Result) Display() string {
	var out []byte
	for _, s := range r.Segments {
		out = append(out, s.Text...)
	}
	return string(out)
}

// Questions returns only the directives the answer collector tracks.
func (r Result) Questions() []Directive {
	var qs []Directive
	for _, d := range r.Directives {
		if d.Kind == KindBlank || d.Kind == KindTrueFalseNotGiven {
			qs = append(qs, d)
		}
	}
	return qs
}

// Corrections returns the inline corrections in source order.
func (r Result) Corrections() []Correction {
	var cs []Correction
	for _, d := range r.Directives {
		if d.Kind == KindCorrection {
			cs = append(cs, d.Correction)
		}
	}
	return cs
}
