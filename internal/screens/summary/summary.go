// Package summary shows the end-of-session report and folds the outcome
// into the stored profile.
package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/bandup/internal/router"
	"github.com/abhisek/bandup/internal/screen"
	"github.com/abhisek/bandup/internal/store"
	"github.com/abhisek/bandup/internal/tutor"
	"github.com/abhisek/bandup/internal/ui/components"
	"github.com/abhisek/bandup/internal/ui/layout"
	"github.com/abhisek/bandup/internal/ui/theme"
)

type mergedMsg struct {
	profile screen.ProfileUpdatedMsg
	err     error
}

// SummaryScreen applies the session outcome exactly once and displays it.
type SummaryScreen struct {
	profiles store.ProfileRepo
	result   tutor.SessionResult
	cont     components.Button
	merged   bool
	errMsg   string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates the summary screen for a finished session.
func New(profiles store.ProfileRepo, result tutor.SessionResult) *SummaryScreen {
	return &SummaryScreen{
		profiles: profiles,
		result:   result,
		cont: components.NewButton("Back to modules", true, func() tea.Cmd {
			return func() tea.Msg { return router.PopScreenMsg{} }
		}),
	}
}

func (s *SummaryScreen) Title() string {
	return "Session Complete"
}

// Init merges the outcome into the profile. The merge runs once no matter
// how the screen is later redrawn or resized.
func (s *SummaryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		p, err := s.profiles.Load(ctx)
		if err != nil {
			return mergedMsg{err: err}
		}
		if p == nil {
			return mergedMsg{err: fmt.Errorf("no profile to update")}
		}

		updated := p.ApplySession(s.result.Outcome, time.Now())
		if err := s.profiles.Save(ctx, &updated); err != nil {
			return mergedMsg{err: err}
		}
		return mergedMsg{profile: screen.ProfileUpdatedMsg{Profile: updated}}
	}
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Enter / Esc", Description: "Back to modules"}}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case mergedMsg:
		if msg.err != nil {
			s.errMsg = "Progress could not be saved: " + msg.err.Error()
			return s, nil
		}
		s.merged = true
		return s, func() tea.Msg { return msg.profile }

	case tea.KeyMsg:
		var cmd tea.Cmd
		s.cont, cmd = s.cont.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	o := s.result.Outcome

	var b strings.Builder
	b.WriteString(theme.Title.Render("Session complete!") + "\n\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%s — %s", titleCase(string(o.Skill)), o.ModuleTitle)) + "\n\n")
	b.WriteString(theme.Body.Render(o.Feedback) + "\n")

	if len(o.Vocab) > 0 {
		b.WriteString("\n" + theme.Selected.Render("Vocabulary") + "\n")
		for _, w := range o.Vocab {
			b.WriteString(theme.Body.Render("  • "+w) + "\n")
		}
	}
	if len(o.Grammar) > 0 {
		b.WriteString("\n" + theme.Selected.Render("Grammar points") + "\n")
		for _, g := range o.Grammar {
			b.WriteString(theme.Body.Render("  • "+g) + "\n")
		}
	}
	if len(s.result.Corrections) > 0 {
		b.WriteString("\n" + theme.Selected.Render("Corrections this session") + "\n")
		for _, c := range s.result.Corrections {
			b.WriteString(theme.Body.Render(fmt.Sprintf("  ✎ %q → %q (%s)", c.Original, c.Corrected, c.Category)) + "\n")
		}
	}

	switch {
	case s.errMsg != "":
		b.WriteString("\n" + theme.Incorrect.Render(s.errMsg))
	case s.merged:
		b.WriteString("\n" + theme.Correct.Render("Progress saved."))
	default:
		b.WriteString("\n" + theme.Hint.Render("Saving progress..."))
	}

	b.WriteString("\n\n" + s.cont.View())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Card.Render(b.String()))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
