package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/bandup/internal/protocol"
	"github.com/abhisek/bandup/internal/tutor"
	"github.com/abhisek/bandup/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	if s.engine.Phase() == tutor.PhaseFailed {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render(s.errMsg))
	}

	footer := s.renderControls(width)
	footerHeight := lipgloss.Height(footer)

	transcriptHeight := height - footerHeight - 1
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}
	transcript := s.renderTranscript(width, transcriptHeight)

	return transcript + "\n" + footer
}

// renderTranscript renders the conversation, clipped to the newest lines
// that fit.
func (s *SessionScreen) renderTranscript(width, height int) string {
	turns := s.engine.Transcript()

	var b strings.Builder
	for i, turn := range turns {
		// The synthetic opening prompt is plumbing, not conversation.
		if i == 0 && turn.Role == tutor.RoleUser {
			continue
		}
		b.WriteString(renderTurn(turn, width))
		b.WriteString("\n")
	}

	if s.aidPath != "" {
		b.WriteString(theme.Hint.Render("Task 1 figure saved to "+s.aidPath) + "\n")
	}
	if s.inFlight {
		b.WriteString(theme.Hint.Render("Tutor is thinking...") + "\n")
	}

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	return strings.Join(lines, "\n")
}

func renderTurn(turn tutor.Turn, width int) string {
	wrap := lipgloss.NewStyle().Width(width - 4)

	switch {
	case turn.Notice:
		return theme.NoticeTurn.Render(wrap.Render("! " + turn.Text))
	case turn.Role == tutor.RoleUser:
		return theme.UserTurn.Render(wrap.Render("You: " + turn.Text))
	}

	var b strings.Builder
	b.WriteString(theme.Selected.Render("Tutor:") + "\n")
	for _, seg := range turn.Parsed.Segments {
		switch seg.Kind {
		case protocol.SegmentPassage:
			b.WriteString(theme.Passage.Width(width - 8).Render(seg.Text) + "\n")
		default:
			b.WriteString(theme.TutorTurn.Render(wrap.Render(seg.Text)) + "\n")
		}
	}
	for _, c := range turn.Parsed.Corrections() {
		b.WriteString(theme.Hint.Render(wrap.Render(fmt.Sprintf(
			"✎ %s: %q → %q — %s", c.Category, c.Original, c.Corrected, c.Explanation))) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderControls draws the composer or the answer form.
func (s *SessionScreen) renderControls(width int) string {
	var b strings.Builder

	switch {
	case s.engine.Recording():
		b.WriteString(theme.Recording.Render("● Recording... press Ctrl+R to stop and send"))
	case len(s.form) > 0:
		b.WriteString(theme.Selected.Render("Your answers") + "\n")
		for i := range s.form {
			marker := "  "
			if i == s.formFocus {
				marker = theme.Selected.Render("▸ ")
			}
			switch s.form[i].kind {
			case protocol.KindBlank:
				b.WriteString(fmt.Sprintf("%sQ%s: %s\n", marker, s.form[i].id, s.form[i].input.View()))
			case protocol.KindTrueFalseNotGiven:
				b.WriteString(marker + s.form[i].choice.View())
			}
		}
	default:
		b.WriteString(s.composer.View())
	}

	if s.errMsg != "" {
		b.WriteString("\n" + theme.Incorrect.Render(s.errMsg))
	}

	return lipgloss.NewStyle().Width(width).Render(b.String())
}
