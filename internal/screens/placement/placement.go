// Package placement is the onboarding proficiency test screen: ten
// generated multiple-choice questions answered one at a time, scored
// locally, then assessed into a band estimate.
package placement

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	placementsvc "github.com/abhisek/bandup/internal/placement"
	"github.com/abhisek/bandup/internal/router"
	"github.com/abhisek/bandup/internal/screen"
	"github.com/abhisek/bandup/internal/store"
	"github.com/abhisek/bandup/internal/ui/components"
	"github.com/abhisek/bandup/internal/ui/layout"
	"github.com/abhisek/bandup/internal/ui/theme"
)

type questionsMsg struct {
	questions []placementsvc.Question
	err       error
}

type assessedMsg struct {
	assessment placementsvc.Assessment
	fallback   bool
	err        error
}

// PlacementScreen runs the test. When next is non-nil the result screen
// hands over to it (onboarding → dashboard); otherwise it pops back.
type PlacementScreen struct {
	svc      *placementsvc.Service
	profiles store.ProfileRepo
	next     func() screen.Screen

	questions []placementsvc.Question
	answers   map[string]string
	idx       int
	choice    components.Choice

	assessment *placementsvc.Assessment
	submitting bool
	loaded     bool
	errMsg     string
}

var _ screen.Screen = (*PlacementScreen)(nil)
var _ screen.KeyHintProvider = (*PlacementScreen)(nil)

// New creates the placement test screen.
func New(svc *placementsvc.Service, profiles store.ProfileRepo, next func() screen.Screen) *PlacementScreen {
	return &PlacementScreen{
		svc:      svc,
		profiles: profiles,
		next:     next,
		answers:  make(map[string]string),
	}
}

func (s *PlacementScreen) Title() string {
	return "Placement Test"
}

func (s *PlacementScreen) Init() tea.Cmd {
	return func() tea.Msg {
		questions, err := s.svc.GenerateTest(context.Background())
		return questionsMsg{questions: questions, err: err}
	}
}

func (s *PlacementScreen) KeyHints() []layout.KeyHint {
	if s.assessment != nil {
		return []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "Enter", Description: "Answer"},
		{Key: "←→", Description: "Prev / next question"},
	}
}

func (s *PlacementScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionsMsg:
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.questions = msg.questions
		s.loaded = true
		s.choice = s.choiceFor(0)
		return s, nil

	case assessedMsg:
		return s.handleAssessed(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *PlacementScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.assessment != nil {
		if msg.String() == "enter" {
			return s, s.finish()
		}
		return s, nil
	}
	if !s.loaded || s.submitting {
		return s, nil
	}

	switch msg.String() {
	case "left":
		s.move(-1)
		return s, nil
	case "right":
		s.move(+1)
		return s, nil
	}

	var cmd tea.Cmd
	s.choice, cmd = s.choice.Update(msg)
	if s.choice.Picked() {
		s.answers[s.questions[s.idx].ID] = s.choice.Value()
		if len(s.answers) == len(s.questions) {
			return s, s.assess()
		}
		s.move(+1)
	}
	return s, cmd
}

// move changes the current question, restoring any earlier answer.
func (s *PlacementScreen) move(delta int) {
	next := s.idx + delta
	if next < 0 || next >= len(s.questions) {
		return
	}
	s.idx = next
	s.choice = s.choiceFor(next)
}

func (s *PlacementScreen) choiceFor(idx int) components.Choice {
	q := s.questions[idx]
	c := components.NewChoice(q.Text, q.Options)
	if prev, ok := s.answers[q.ID]; ok {
		for i, opt := range q.Options {
			if opt == prev {
				c.Chosen = i
				c.Selected = i
			}
		}
	}
	return c
}

// assess scores locally and asks for the band estimate. An assessment
// failure falls back to a default so onboarding never dead-ends.
func (s *PlacementScreen) assess() tea.Cmd {
	s.submitting = true
	score := placementsvc.Score(s.questions, s.answers)
	total := len(s.questions)

	return func() tea.Msg {
		a, err := s.svc.Assess(context.Background(), score, total)
		if err != nil {
			return assessedMsg{assessment: placementsvc.DefaultAssessment(), fallback: true, err: err}
		}
		return assessedMsg{assessment: a}
	}
}

func (s *PlacementScreen) handleAssessed(msg assessedMsg) (screen.Screen, tea.Cmd) {
	s.submitting = false
	s.assessment = &msg.assessment
	if msg.fallback {
		s.errMsg = "Assessment service unavailable; using a default estimate."
	}
	return s, nil
}

// finish writes the estimate into the profile and leaves the screen.
func (s *PlacementScreen) finish() tea.Cmd {
	a := *s.assessment
	ctx := context.Background()

	p, err := s.profiles.Load(ctx)
	if err != nil || p == nil {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	updated := *p
	updated.CurrentLevel = a.Level
	updated.EstimatedBand = &a.Band
	updated.OnboardingComplete = true
	if err := s.profiles.Save(ctx, &updated); err != nil {
		s.errMsg = err.Error()
		return nil
	}

	announce := func() tea.Msg { return screen.ProfileUpdatedMsg{Profile: updated} }
	if s.next != nil {
		return tea.Batch(announce, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: s.next()}
		})
	}
	return tea.Batch(announce, func() tea.Msg { return router.PopScreenMsg{} })
}

func (s *PlacementScreen) View(width, height int) string {
	switch {
	case s.errMsg != "" && !s.loaded:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render("Could not generate the test: "+s.errMsg))
	case !s.loaded:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("Generating your personalized test..."))
	case s.submitting:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("Analyzing your answers..."))
	case s.assessment != nil:
		return s.renderResult(width, height)
	}

	progress := components.NewProgressBar("", float64(s.idx+1)/float64(len(s.questions)), false, 40)
	header := theme.Subtitle.Render(fmt.Sprintf("Question %d of %d", s.idx+1, len(s.questions)))

	body := header + "\n" + progress.View() + "\n\n" + s.choice.View()
	if s.errMsg != "" {
		body += "\n" + theme.Hint.Render(s.errMsg)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Card.Render(body))
}

func (s *PlacementScreen) renderResult(width, height int) string {
	score := placementsvc.Score(s.questions, s.answers)
	body := theme.Title.Render("Assessment complete") + "\n\n" +
		theme.Body.Render(fmt.Sprintf("Score: %d / %d", score, len(s.questions))) + "\n" +
		theme.Body.Render(fmt.Sprintf("Level: %s", s.assessment.Level)) + "\n" +
		theme.Correct.Render(fmt.Sprintf("Estimated band: %.1f", s.assessment.Band))
	if s.errMsg != "" {
		body += "\n\n" + theme.Hint.Render(s.errMsg)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Card.Render(body))
}
