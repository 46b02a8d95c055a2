// Package app assembles the screens, services, and the root Bubble Tea
// model.
package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/bandup/internal/audio"
	"github.com/abhisek/bandup/internal/llm"
	"github.com/abhisek/bandup/internal/modules"
	"github.com/abhisek/bandup/internal/placement"
	"github.com/abhisek/bandup/internal/profile"
	"github.com/abhisek/bandup/internal/router"
	"github.com/abhisek/bandup/internal/screen"
	"github.com/abhisek/bandup/internal/screens/catalog"
	"github.com/abhisek/bandup/internal/screens/home"
	placementscreen "github.com/abhisek/bandup/internal/screens/placement"
	"github.com/abhisek/bandup/internal/screens/session"
	"github.com/abhisek/bandup/internal/screens/summary"
	"github.com/abhisek/bandup/internal/screens/vault"
	"github.com/abhisek/bandup/internal/screens/welcome"
	"github.com/abhisek/bandup/internal/store"
	"github.com/abhisek/bandup/internal/tutor"
	"github.com/abhisek/bandup/internal/ui/layout"
)

// Options carries the assembled services the UI runs on.
type Options struct {
	Provider llm.Provider
	Media    llm.Media

	Profiles  store.ProfileRepo
	Placement *placement.Service
	Catalog   *modules.Catalog

	Player   *audio.Player
	Recorder audio.Recorder
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts   Options
	router *router.Router

	targetBand    float64
	estimatedBand float64
	width         int
	height        int
}

func newAppModel(opts Options) AppModel {
	m := AppModel{opts: opts}

	p := opts.loadProfile()
	if p == nil || !p.OnboardingComplete {
		m.router = router.New(welcome.New(opts.Profiles, opts.placementScreen, opts.homeScreen))
	} else {
		m.adoptProfile(*p)
		m.router = router.New(opts.homeScreen())
	}
	return m
}

func (m *AppModel) adoptProfile(p profile.UserProfile) {
	m.targetBand = p.TargetBand
	if p.EstimatedBand != nil {
		m.estimatedBand = *p.EstimatedBand
	} else {
		m.estimatedBand = 0
	}
}

// loadProfile reads the stored profile, treating a load failure like a
// missing profile so startup never hard-fails on a bad blob.
func (o Options) loadProfile() *profile.UserProfile {
	p, err := o.Profiles.Load(context.Background())
	if err != nil {
		return nil
	}
	return p
}

// homeScreen builds the dashboard over the freshest stored profile.
func (o Options) homeScreen() screen.Screen {
	p := o.loadProfile()
	if p == nil {
		p = &profile.UserProfile{}
		p.Normalize()
	}
	return home.New(o.Profiles, *p,
		o.catalogScreen,
		func() screen.Screen { return vault.New(o.Profiles, *o.loadOrEmpty()) },
		o.retakeScreen,
	)
}

func (o Options) loadOrEmpty() *profile.UserProfile {
	p := o.loadProfile()
	if p == nil {
		p = &profile.UserProfile{}
		p.Normalize()
	}
	return p
}

// catalogScreen builds the module list for one skill, reading the profile
// fresh so a track switch or new band estimate takes effect immediately.
func (o Options) catalogScreen(skill profile.Skill) screen.Screen {
	p := o.loadOrEmpty()
	band := 0.0
	if p.EstimatedBand != nil {
		band = *p.EstimatedBand
	}
	track := p.Track

	return catalog.New(o.Catalog, skill, track, band, func(m modules.Module) screen.Screen {
		engine := tutor.New(o.Provider, o.Media, tutor.Config{
			Skill:             skill,
			Track:             track,
			ModuleTitle:       m.Title,
			ModuleDescription: m.Description,
			Band:              band,
		})
		return session.New(engine, o.Player, o.Recorder, func(result tutor.SessionResult) screen.Screen {
			return summary.New(o.Profiles, result)
		})
	})
}

// placementScreen is the onboarding test; it hands over to the dashboard.
func (o Options) placementScreen() screen.Screen {
	return placementscreen.New(o.Placement, o.Profiles, o.homeScreen)
}

// retakeScreen is the placement test launched from the dashboard; it pops
// back instead of replacing the stack.
func (o Options) retakeScreen() screen.Screen {
	return placementscreen.New(o.Placement, o.Profiles, nil)
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.ProfileUpdatedMsg:
		m.adoptProfile(msg.Profile)
		return m, m.router.Broadcast(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.targetBand, m.estimatedBand, m.width)

	footerHints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if provider, ok := active.(screen.KeyHintProvider); ok {
		if hints := provider.KeyHints(); len(hints) > 0 {
			footerHints = hints
		}
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
