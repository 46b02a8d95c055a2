package protocol

import (
	"strings"
)

const (
	tagBlank        = "[BLANK:"
	tagTFNG         = "[TFNG:"
	tagCorrection   = "[CORRECTION:"
	tagPassageOpen  = "[PASSAGE]"
	tagPassageClose = "[/PASSAGE]"
	tagScriptOpen   = "[SCRIPT]"
	tagScriptClose  = "[/SCRIPT]"
)

// tokenKind enumerates scanner output tokens. prose tokens carry literal
// text; the rest carry a directive, a body, or nothing (terminal).
type tokenKind int

const (
	tokProse tokenKind = iota
	tokBlank
	tokTFNG
	tokCorrection
	tokPassage
	tokScript
	tokTerminal
)

type token struct {
	kind tokenKind
	text string    // prose literal, or passage/script body
	dir  Directive // populated for directive tokens
}

// Parse extracts directives from one tutor turn. It never fails: anything
// that does not scan as a well-formed tag stays in the prose verbatim.
func Parse(text string) Result {
	var res Result
	var prose strings.Builder

	flushProse := func() {
		if prose.Len() > 0 {
			res.Segments = append(res.Segments, Segment{Kind: SegmentProse, Text: prose.String()})
			prose.Reset()
		}
	}

	for _, tok := range scan(text) {
		switch tok.kind {
		case tokProse:
			prose.WriteString(tok.text)
		case tokBlank:
			res.Directives = append(res.Directives, tok.dir)
			prose.WriteString("(___" + tok.dir.ID + "___)")
		case tokTFNG:
			res.Directives = append(res.Directives, tok.dir)
			prose.WriteString("(Q" + tok.dir.ID + ")")
		case tokCorrection:
			res.Directives = append(res.Directives, tok.dir)
			prose.WriteString(tok.dir.Correction.Corrected)
		case tokPassage:
			flushProse()
			body, hadTerminal := stripTerminal(tok.text)
			res.Terminal = res.Terminal || hadTerminal
			display, inner := renderInline(body)
			res.Directives = append(res.Directives, Directive{Kind: KindPassage, Body: display})
			res.Directives = append(res.Directives, inner...)
			res.Segments = append(res.Segments, Segment{Kind: SegmentPassage, Text: display})
		case tokScript:
			body, hadTerminal := stripTerminal(tok.text)
			res.Terminal = res.Terminal || hadTerminal
			res.Scripts = append(res.Scripts, body)
		case tokTerminal:
			res.Terminal = true
		}
	}
	flushProse()

	return res
}

// SpeechText rewrites a tutor turn for speech synthesis: passages are not
// read verbatim, blanks and statements are voiced as questions, hidden
// script bodies are spoken, and all remaining markup is dropped.
func SpeechText(text string) string {
	var b strings.Builder
	for _, tok := range scan(text) {
		switch tok.kind {
		case tokProse:
			b.WriteString(tok.text)
		case tokBlank:
			b.WriteString("blank number " + tok.dir.ID)
		case tokTFNG:
			b.WriteString("Question " + tok.dir.ID + ": " + tok.dir.Statement)
		case tokCorrection:
			b.WriteString(tok.dir.Correction.Corrected)
		case tokScript:
			body, _ := stripTerminal(tok.text)
			b.WriteString(body)
		case tokPassage, tokTerminal:
			// not spoken
		}
	}
	return strings.TrimSpace(b.String())
}

// scan tokenizes the input in one left-to-right pass. No backtracking past
// a recognized token; a failed tag match emits a single literal byte and
// resumes, so overlapping candidates still parse.
func scan(text string) []token {
	var toks []token
	var prose strings.Builder

	flush := func() {
		if prose.Len() > 0 {
			toks = append(toks, token{kind: tokProse, text: prose.String()})
			prose.Reset()
		}
	}

	i := 0
	for i < len(text) {
		c := text[i]

		if c == 'S' && strings.HasPrefix(text[i:], Terminal) {
			flush()
			toks = append(toks, token{kind: tokTerminal})
			i += len(Terminal)
			continue
		}

		if c != '[' {
			prose.WriteByte(c)
			i++
			continue
		}

		if tok, n, ok := scanTag(text[i:]); ok {
			flush()
			toks = append(toks, tok)
			i += n
			continue
		}

		// Not a well-formed tag; the bracket is literal prose.
		prose.WriteByte(c)
		i++
	}
	flush()

	return toks
}

// scanTag attempts to read one directive tag at the start of s. It returns
// the token, the number of bytes consumed, and whether the match succeeded.
func scanTag(s string) (token, int, bool) {
	switch {
	case strings.HasPrefix(s, tagBlank):
		id, n, ok := scanNumber(s[len(tagBlank):])
		if !ok || !strings.HasPrefix(s[len(tagBlank)+n:], "]") {
			return token{}, 0, false
		}
		return token{
			kind: tokBlank,
			dir:  Directive{Kind: KindBlank, ID: id},
		}, len(tagBlank) + n + 1, true

	case strings.HasPrefix(s, tagTFNG):
		rest := s[len(tagTFNG):]
		id, n, ok := scanNumber(rest)
		if !ok || !strings.HasPrefix(rest[n:], ":") {
			return token{}, 0, false
		}
		stmt := rest[n+1:]
		end := strings.IndexByte(stmt, ']')
		if end < 0 {
			return token{}, 0, false
		}
		return token{
			kind: tokTFNG,
			dir:  Directive{Kind: KindTrueFalseNotGiven, ID: id, Statement: stmt[:end]},
		}, len(tagTFNG) + n + 1 + end + 1, true

	case strings.HasPrefix(s, tagCorrection):
		rest := s[len(tagCorrection):]
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return token{}, 0, false
		}
		fields := strings.Split(rest[:end], "|")
		if len(fields) != 4 || !validCategory(fields[0]) {
			return token{}, 0, false
		}
		return token{
			kind: tokCorrection,
			dir: Directive{
				Kind: KindCorrection,
				Correction: Correction{
					Category:    CorrectionCategory(fields[0]),
					Original:    fields[1],
					Corrected:   fields[2],
					Explanation: fields[3],
				},
			},
		}, len(tagCorrection) + end + 1, true

	case strings.HasPrefix(s, tagPassageOpen):
		body, n, ok := scanBlock(s, tagPassageOpen, tagPassageClose)
		if !ok {
			return token{}, 0, false
		}
		return token{
			kind: tokPassage,
			text: body,
			dir:  Directive{Kind: KindPassage, Body: body},
		}, n, true

	case strings.HasPrefix(s, tagScriptOpen):
		body, n, ok := scanBlock(s, tagScriptOpen, tagScriptClose)
		if !ok {
			return token{}, 0, false
		}
		return token{kind: tokScript, text: body}, n, true
	}

	return token{}, 0, false
}

// renderInline substitutes blank, true/false, and correction tags inside a
// passage body, collecting the directives in source order. Gap-fill
// passages carry their questions inline, so the body is scanned the same
// way as top-level prose; anything else (including nested blocks) stays
// literal.
func renderInline(body string) (string, []Directive) {
	var b strings.Builder
	var dirs []Directive

	i := 0
	for i < len(body) {
		if body[i] != '[' {
			b.WriteByte(body[i])
			i++
			continue
		}
		if tok, n, ok := scanTag(body[i:]); ok {
			switch tok.kind {
			case tokBlank:
				dirs = append(dirs, tok.dir)
				b.WriteString("(___" + tok.dir.ID + "___)")
				i += n
				continue
			case tokTFNG:
				dirs = append(dirs, tok.dir)
				b.WriteString("(Q" + tok.dir.ID + ")")
				i += n
				continue
			case tokCorrection:
				dirs = append(dirs, tok.dir)
				b.WriteString(tok.dir.Correction.Corrected)
				i += n
				continue
			}
		}
		b.WriteByte(body[i])
		i++
	}

	return b.String(), dirs
}

// scanNumber reads a run of ASCII digits at the start of s.
func scanNumber(s string) (string, int, bool) {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n == 0 {
		return "", 0, false
	}
	return s[:n], n, true
}

// scanBlock reads an open/close delimited block at the start of s and
// returns the trimmed body. An unterminated block is not a match.
func scanBlock(s, open, closer string) (string, int, bool) {
	rest := s[len(open):]
	end := strings.Index(rest, closer)
	if end < 0 {
		return "", 0, false
	}
	body := strings.TrimSpace(rest[:end])
	return body, len(open) + end + len(closer), true
}

// stripTerminal removes the terminal marker from a block body and reports
// whether it was present.
func stripTerminal(s string) (string, bool) {
	if !strings.Contains(s, Terminal) {
		return s, false
	}
	return strings.TrimSpace(strings.ReplaceAll(s, Terminal, "")), true
}
