// Package catalog shows the generated practice modules for one skill and
// launches a tutoring session from the selected one.
package catalog

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/bandup/internal/modules"
	"github.com/abhisek/bandup/internal/profile"
	"github.com/abhisek/bandup/internal/router"
	"github.com/abhisek/bandup/internal/screen"
	"github.com/abhisek/bandup/internal/ui/components"
	"github.com/abhisek/bandup/internal/ui/layout"
	"github.com/abhisek/bandup/internal/ui/theme"
)

type modulesMsg struct {
	modules []modules.Module
	err     error
}

// CatalogScreen lists practice modules for a skill.
type CatalogScreen struct {
	svc        *modules.Catalog
	skill      profile.Skill
	track      profile.ExamTrack
	band       float64
	sessionFor func(m modules.Module) screen.Screen

	menu   components.Menu
	loaded bool
	errMsg string
}

var _ screen.Screen = (*CatalogScreen)(nil)
var _ screen.KeyHintProvider = (*CatalogScreen)(nil)

// New creates the catalog screen. sessionFor builds the tutor screen for a
// picked module.
func New(svc *modules.Catalog, skill profile.Skill, track profile.ExamTrack, band float64, sessionFor func(modules.Module) screen.Screen) *CatalogScreen {
	return &CatalogScreen{
		svc:        svc,
		skill:      skill,
		track:      track,
		band:       band,
		sessionFor: sessionFor,
	}
}

func (s *CatalogScreen) Title() string {
	return fmt.Sprintf("%s Modules", titleCase(string(s.skill)))
}

func (s *CatalogScreen) Init() tea.Cmd {
	return func() tea.Msg {
		mods, err := s.svc.ForSkill(context.Background(), s.skill, s.track, s.band)
		return modulesMsg{modules: mods, err: err}
	}
}

func (s *CatalogScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start session"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *CatalogScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case modulesMsg:
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			s.loaded = true
			return s, nil
		}
		items := make([]components.MenuItem, 0, len(msg.modules))
		for _, m := range msg.modules {
			m := m
			items = append(items, components.MenuItem{
				Label:       fmt.Sprintf("%s  [%s]", m.Title, m.Type),
				Description: m.Description,
				Action: func() tea.Cmd {
					return func() tea.Msg {
						return router.PushScreenMsg{Screen: s.sessionFor(m)}
					}
				},
			})
		}
		s.menu = components.NewMenu(items)
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		if !s.loaded || s.errMsg != "" {
			return s, nil
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *CatalogScreen) View(width, height int) string {
	switch {
	case !s.loaded:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render(fmt.Sprintf("Designing %s modules for your level...", s.skill)))
	case s.errMsg != "":
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render("Could not load modules: "+s.errMsg))
	}

	body := theme.Title.Render(fmt.Sprintf("%s practice", titleCase(string(s.skill)))) + "\n\n" +
		s.menu.View()
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Card.Render(body))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
