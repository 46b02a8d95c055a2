package protocol

import (
	"strings"
	"testing"
)

func TestParse_NoDirectivesIsIdentity(t *testing.T) {
	in := "Welcome back. Today we will work on skimming and scanning.\nReady?"
	res := Parse(in)

	if len(res.Directives) != 0 {
		t.Errorf("expected no directives, got %v", res.Directives)
	}
	if res.Terminal {
		t.Error("expected no terminal signal")
	}
	if got := res.Display(); got != in {
		t.Errorf("display = %q, want input unchanged", got)
	}
}

func TestParse_Blanks(t *testing.T) {
	res := Parse("Fill in: the tea was [BLANK:1] in Yunnan and [BLANK:2] abroad.")

	if len(res.Directives) != 2 {
		t.Fatalf("got %d directives, want 2", len(res.Directives))
	}
	if res.Directives[0].Kind != KindBlank || res.Directives[0].ID != "1" {
		t.Errorf("first directive = %+v, want blank 1", res.Directives[0])
	}
	if res.Directives[1].Kind != KindBlank || res.Directives[1].ID != "2" {
		t.Errorf("second directive = %+v, want blank 2", res.Directives[1])
	}
	want := "Fill in: the tea was (___1___) in Yunnan and (___2___) abroad."
	if got := res.Display(); got != want {
		t.Errorf("display = %q, want %q", got, want)
	}
}

func TestParse_DuplicateBlankIDsAreIndependent(t *testing.T) {
	res := Parse("[BLANK:1] and again [BLANK:1]")
	if len(res.Directives) != 2 {
		t.Fatalf("got %d directives, want 2 independent instances", len(res.Directives))
	}
}

func TestParse_TrueFalseNotGiven(t *testing.T) {
	res := Parse("Judge this. [TFNG:5:The sky is green]")

	if len(res.Directives) != 1 {
		t.Fatalf("got %d directives, want 1", len(res.Directives))
	}
	d := res.Directives[0]
	if d.Kind != KindTrueFalseNotGiven || d.ID != "5" {
		t.Errorf("directive = %+v, want TFNG 5", d)
	}
	if d.Statement != "The sky is green" {
		t.Errorf("statement = %q, want verbatim text", d.Statement)
	}
	if got := res.Display(); got != "Judge this. (Q5)" {
		t.Errorf("display = %q", got)
	}
}

func TestParse_PassageSplitsSegments(t *testing.T) {
	res := Parse("Read the text below.\n[PASSAGE]Tea originated in Yunnan.\nIt spread along trade routes.[/PASSAGE]\nNow answer [BLANK:1].")

	if len(res.Segments) != 3 {
		t.Fatalf("got %d segments, want prose/passage/prose", len(res.Segments))
	}
	if res.Segments[0].Kind != SegmentProse || res.Segments[1].Kind != SegmentPassage || res.Segments[2].Kind != SegmentProse {
		t.Errorf("segment kinds = %v %v %v", res.Segments[0].Kind, res.Segments[1].Kind, res.Segments[2].Kind)
	}
	if !strings.Contains(res.Segments[1].Text, "trade routes") {
		t.Errorf("passage body = %q", res.Segments[1].Text)
	}
	var kinds []Kind
	for _, d := range res.Directives {
		kinds = append(kinds, d.Kind)
	}
	if len(kinds) != 2 || kinds[0] != KindPassage || kinds[1] != KindBlank {
		t.Errorf("directive kinds = %v, want passage then blank", kinds)
	}
}

func TestParse_QuestionsInsidePassage(t *testing.T) {
	res := Parse("Read and fill the gaps.\n[PASSAGE]Tea is [BLANK:1] in Yunnan province. It [BLANK:2] along trade routes.[/PASSAGE]\n[TFNG:3:Tea reached Europe by sea]")

	qs := res.Questions()
	if len(qs) != 3 {
		t.Fatalf("got %d questions, want 3 (two blanks inside the passage, one statement outside)", len(qs))
	}
	if qs[0].Kind != KindBlank || qs[0].ID != "1" {
		t.Errorf("first question = %+v, want blank 1", qs[0])
	}
	if qs[1].Kind != KindBlank || qs[1].ID != "2" {
		t.Errorf("second question = %+v, want blank 2", qs[1])
	}
	if qs[2].Kind != KindTrueFalseNotGiven || qs[2].ID != "3" {
		t.Errorf("third question = %+v, want TFNG 3", qs[2])
	}

	if len(res.Segments) != 3 {
		t.Fatalf("got %d segments, want prose/passage/prose", len(res.Segments))
	}
	passage := res.Segments[1]
	if passage.Kind != SegmentPassage {
		t.Fatalf("middle segment kind = %v, want passage", passage.Kind)
	}
	want := "Tea is (___1___) in Yunnan province. It (___2___) along trade routes."
	if passage.Text != want {
		t.Errorf("passage text = %q, want placeholders substituted: %q", passage.Text, want)
	}
	if strings.Contains(res.Display(), "[BLANK") {
		t.Errorf("raw blank tag leaked into display: %q", res.Display())
	}
}

func TestParse_CorrectionInsidePassage(t *testing.T) {
	res := Parse("[PASSAGE]Your summary: [CORRECTION:grammar|tea were|tea was|Singular subject] popular.[/PASSAGE]")

	cs := res.Corrections()
	if len(cs) != 1 {
		t.Fatalf("got %d corrections, want 1", len(cs))
	}
	if cs[0].Corrected != "tea was" {
		t.Errorf("corrected = %q", cs[0].Corrected)
	}
	if got := res.Segments[0].Text; got != "Your summary: tea was popular." {
		t.Errorf("passage text = %q, want the corrected fragment rendered", got)
	}
}

func TestParse_MalformedTagInsidePassageIsLiteral(t *testing.T) {
	res := Parse("[PASSAGE]A [BLANK:x] is not a question.[/PASSAGE]")

	if len(res.Questions()) != 0 {
		t.Fatalf("malformed blank collected: %+v", res.Questions())
	}
	if got := res.Segments[0].Text; got != "A [BLANK:x] is not a question." {
		t.Errorf("passage text = %q, want tag kept literal", got)
	}
}

func TestParse_PassageMayStartOrEndTurn(t *testing.T) {
	res := Parse("[PASSAGE]Only a passage.[/PASSAGE]")
	if len(res.Segments) != 1 || res.Segments[0].Kind != SegmentPassage {
		t.Fatalf("segments = %+v, want a single passage", res.Segments)
	}
}

func TestParse_Correction(t *testing.T) {
	res := Parse("You wrote [CORRECTION:grammar|He go home|He goes home|Third person singular takes -s] yesterday.")

	cs := res.Corrections()
	if len(cs) != 1 {
		t.Fatalf("got %d corrections, want 1", len(cs))
	}
	c := cs[0]
	if c.Category != CategoryGrammar {
		t.Errorf("category = %q", c.Category)
	}
	if c.Original != "He go home" || c.Corrected != "He goes home" {
		t.Errorf("fields = %q / %q", c.Original, c.Corrected)
	}
	if c.Explanation != "Third person singular takes -s" {
		t.Errorf("explanation = %q", c.Explanation)
	}
	if got := res.Display(); got != "You wrote He goes home yesterday." {
		t.Errorf("display = %q", got)
	}
}

func TestParse_UnknownCorrectionCategoryIsProse(t *testing.T) {
	in := "[CORRECTION:style|a|b|c]"
	res := Parse(in)
	if len(res.Directives) != 0 {
		t.Errorf("expected literal prose, got directives %v", res.Directives)
	}
	if res.Display() != in {
		t.Errorf("display = %q, want input unchanged", res.Display())
	}
}

func TestParse_MalformedTagsAreProse(t *testing.T) {
	cases := []string{
		"[BLANK:abc]",
		"[BLANK:1",
		"[TFNG:2 The statement]",
		"[TFNG:2:unterminated statement",
		"[PASSAGE]never closed",
		"[CORRECTION:grammar|only|three]",
		"[UNKNOWN:1]",
		"just a [ bracket",
	}
	for _, in := range cases {
		res := Parse(in)
		if len(res.Directives) != 0 {
			t.Errorf("%q: expected no directives, got %v", in, res.Directives)
		}
		if got := res.Display(); got != in {
			t.Errorf("%q: display = %q, want passthrough", in, got)
		}
	}
}

func TestParse_TerminalDetection(t *testing.T) {
	res := Parse("Well done today. SESSION_COMPLETE")
	if !res.Terminal {
		t.Error("expected terminal signal")
	}
	if strings.Contains(res.Display(), Terminal) {
		t.Errorf("terminal marker leaked into display: %q", res.Display())
	}

	if Parse("Keep going, nothing ends here.").Terminal {
		t.Error("terminal signalled without the marker")
	}
}

func TestParse_ScriptHiddenFromDisplay(t *testing.T) {
	res := Parse("Listen carefully.[SCRIPT]The train departs at nine.[/SCRIPT] [BLANK:1]")

	if strings.Contains(res.Display(), "train departs") {
		t.Errorf("script body leaked into display: %q", res.Display())
	}
	if len(res.Scripts) != 1 || !strings.Contains(res.Scripts[0], "train departs") {
		t.Errorf("scripts = %v", res.Scripts)
	}
}

func TestParse_MixedTurnKeepsOrder(t *testing.T) {
	res := Parse("[BLANK:1] then [TFNG:2:Water boils at 90C] then [BLANK:3]")
	if len(res.Directives) != 3 {
		t.Fatalf("got %d directives", len(res.Directives))
	}
	ids := []string{res.Directives[0].ID, res.Directives[1].ID, res.Directives[2].ID}
	if ids[0] != "1" || ids[1] != "2" || ids[2] != "3" {
		t.Errorf("order = %v", ids)
	}
}

func TestSpeechText(t *testing.T) {
	in := "Intro. [PASSAGE]Do not read this aloud.[/PASSAGE] Answer [BLANK:1] and [TFNG:2:The sky is green]. SESSION_COMPLETE"
	got := SpeechText(in)

	if strings.Contains(got, "read this aloud") {
		t.Errorf("passage body spoken: %q", got)
	}
	if !strings.Contains(got, "blank number 1") {
		t.Errorf("blank not voiced: %q", got)
	}
	if !strings.Contains(got, "Question 2: The sky is green") {
		t.Errorf("statement not voiced: %q", got)
	}
	if strings.Contains(got, Terminal) {
		t.Errorf("terminal marker spoken: %q", got)
	}
}

func TestSpeechText_SpeaksScriptBody(t *testing.T) {
	got := SpeechText("Here is the recording.[SCRIPT]The train departs at nine.[/SCRIPT]")
	if !strings.Contains(got, "The train departs at nine.") {
		t.Errorf("script body not spoken: %q", got)
	}
}
