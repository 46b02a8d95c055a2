// Package welcome is the onboarding wizard: name, exam track, and either a
// self-declared band or a hand-off to the placement test.
package welcome

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/bandup/internal/profile"
	"github.com/abhisek/bandup/internal/router"
	"github.com/abhisek/bandup/internal/screen"
	"github.com/abhisek/bandup/internal/store"
	"github.com/abhisek/bandup/internal/ui/components"
	"github.com/abhisek/bandup/internal/ui/layout"
	"github.com/abhisek/bandup/internal/ui/theme"
)

type step int

const (
	stepName step = iota
	stepTrack
	stepKnowLevel
	stepBands
)

// bandScale is the half-step band range offered by the sliders.
var bandScale = []float64{4.0, 4.5, 5.0, 5.5, 6.0, 6.5, 7.0, 7.5, 8.0, 8.5, 9.0}

type savedMsg struct {
	err  error
	next screen.Screen
}

// WelcomeScreen collects a fresh profile.
type WelcomeScreen struct {
	profiles store.ProfileRepo

	// placementFactory and homeFactory build the screens this wizard can
	// hand over to; factories avoid constructing them up front.
	placementFactory func() screen.Screen
	homeFactory      func() screen.Screen

	step    step
	name    components.TextInput
	track   components.Choice
	know    components.Choice
	current int // index into bandScale
	target  int
	onBand  bool // stepBands: false = editing current, true = editing target
	errMsg  string
}

var _ screen.Screen = (*WelcomeScreen)(nil)
var _ screen.KeyHintProvider = (*WelcomeScreen)(nil)

// New creates the onboarding wizard.
func New(profiles store.ProfileRepo, placementFactory, homeFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		profiles:         profiles,
		placementFactory: placementFactory,
		homeFactory:      homeFactory,
		name:             components.NewTextInput("Your name", 40),
		track: components.NewChoice("Which IELTS test are you preparing for?", []string{
			"Academic — for university or professional registration",
			"General Training — for migration or work",
		}),
		know: components.NewChoice("Do you know your current level?", []string{
			"Yes, I'll enter it",
			"No, test me",
		}),
		current: indexOfBand(5.5),
		target:  indexOfBand(7.0),
	}
}

func (w *WelcomeScreen) Title() string {
	return "Welcome"
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return w.name.Init()
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	switch w.step {
	case stepName:
		return []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
	case stepBands:
		return []layout.KeyHint{
			{Key: "←→", Description: "Adjust band"},
			{Key: "Tab", Description: "Switch slider"},
			{Key: "Enter", Description: "Complete setup"},
		}
	default:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
		}
	}
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if saved, ok := msg.(savedMsg); ok {
		if saved.err != nil {
			w.errMsg = saved.err.Error()
			return w, nil
		}
		return w, func() tea.Msg { return router.ReplaceScreenMsg{Screen: saved.next} }
	}

	switch w.step {
	case stepName:
		return w.updateName(msg)
	case stepTrack:
		return w.updateTrack(msg)
	case stepKnowLevel:
		return w.updateKnowLevel(msg)
	case stepBands:
		return w.updateBands(msg)
	}
	return w, nil
}

func (w *WelcomeScreen) updateName(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		if strings.TrimSpace(w.name.Value()) == "" {
			w.name.Submit(false)
			return w, nil
		}
		w.step = stepTrack
		return w, nil
	}

	var cmd tea.Cmd
	w.name, cmd = w.name.Update(msg)
	return w, cmd
}

func (w *WelcomeScreen) updateTrack(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	w.track, cmd = w.track.Update(msg)
	if w.track.Picked() {
		w.step = stepKnowLevel
	}
	return w, cmd
}

func (w *WelcomeScreen) updateKnowLevel(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	w.know, cmd = w.know.Update(msg)
	if !w.know.Picked() {
		return w, cmd
	}

	if w.know.Chosen == 0 {
		w.step = stepBands
		return w, cmd
	}

	// Placement path: the profile is provisional until the test finishes.
	return w, w.save(false, 0)
}

func (w *WelcomeScreen) updateBands(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return w, nil
	}

	idx := &w.current
	if w.onBand {
		idx = &w.target
	}

	switch kmsg.String() {
	case "left", "h":
		if *idx > 0 {
			*idx--
		}
	case "right", "l":
		if *idx < len(bandScale)-1 {
			*idx++
		}
	case "tab", "up", "down":
		w.onBand = !w.onBand
	case "enter":
		return w, w.save(true, bandScale[w.current])
	}
	return w, nil
}

// save persists the collected profile and hands over to the next screen.
func (w *WelcomeScreen) save(selfAssessed bool, currentBand float64) tea.Cmd {
	track := profile.TrackAcademic
	if w.track.Chosen == 1 {
		track = profile.TrackGeneral
	}

	p := profile.UserProfile{
		Name:               strings.TrimSpace(w.name.Value()),
		Track:              track,
		TargetBand:         bandScale[w.target],
		OnboardingComplete: selfAssessed,
	}
	if selfAssessed {
		p.CurrentLevel = fmt.Sprintf("Band %.1f", currentBand)
		p.EstimatedBand = &currentBand
	}
	p.Normalize()

	return func() tea.Msg {
		if err := w.profiles.Save(context.Background(), &p); err != nil {
			return savedMsg{err: err}
		}
		next := w.homeFactory
		if !selfAssessed {
			next = w.placementFactory
		}
		return savedMsg{next: next()}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var body string

	switch w.step {
	case stepName:
		body = theme.Title.Render("First, what's your name?") + "\n\n" + w.name.View()
	case stepTrack:
		body = w.track.View()
	case stepKnowLevel:
		body = w.know.View()
	case stepBands:
		body = w.renderBands(width)
	}

	if w.errMsg != "" {
		body += "\n\n" + theme.Incorrect.Render("Could not save your profile: "+w.errMsg)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Card.Render(body))
}

func (w *WelcomeScreen) renderBands(width int) string {
	barWidth := 30
	if layout.IsCompactWidth(width) {
		barWidth = 20
	}

	current := components.NewProgressBar(
		fmt.Sprintf("Current band  %.1f", bandScale[w.current]),
		float64(w.current)/float64(len(bandScale)-1), false, barWidth)
	target := components.NewProgressBar(
		fmt.Sprintf("Target band   %.1f", bandScale[w.target]),
		float64(w.target)/float64(len(bandScale)-1), false, barWidth)

	currentLine := current.View()
	targetLine := target.View()
	if w.onBand {
		targetLine = theme.Selected.Render("▸ ") + targetLine
		currentLine = "  " + currentLine
	} else {
		currentLine = theme.Selected.Render("▸ ") + currentLine
		targetLine = "  " + targetLine
	}

	return theme.Title.Render("Set your bands") + "\n\n" +
		currentLine + "\n" + targetLine
}

func indexOfBand(band float64) int {
	for i, b := range bandScale {
		if b == band {
			return i
		}
	}
	return 0
}
