// Package home is the dashboard: skill menu, per-skill progress, and the
// recent activity feed.
package home

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

// recentActivityCount caps the feed length.
const recentActivityCount = 5

// HomeScreen is the root screen once onboarding is done.
type HomeScreen struct {
	profiles store.ProfileRepo
	user     profile.UserProfile

	catalogFor    func(skill profile.Skill) screen.Screen
	vaultFactory  func() screen.Screen
	retakeFactory func() screen.Screen
	menu          components.Menu
	errMsg        string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates the dashboard for the given profile.
func New(profiles store.ProfileRepo, user profile.UserProfile, catalogFor func(profile.Skill) screen.Screen, vaultFactory, retakeFactory func() screen.Screen) *HomeScreen {
	h := &HomeScreen{
		profiles:      profiles,
		user:          user,
		catalogFor:    catalogFor,
		vaultFactory:  vaultFactory,
		retakeFactory: retakeFactory,
	}
	h.menu = h.buildMenu()
	return h
}

func (h *HomeScreen) buildMenu() components.Menu {
	items := make([]components.MenuItem, 0, len(profile.AllSkills())+3)
	for _, skill := range profile.AllSkills() {
		skill := skill
		sessions := 0
		if sp := h.user.ProgressFor(skill); sp != nil {
			sessions = sp.SessionsCompleted
		}
		items = append(items, components.MenuItem{
			Label:       fmt.Sprintf("Practice %s", titleCase(string(skill))),
			Description: fmt.Sprintf("%d sessions completed", sessions),
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: h.catalogFor(skill)}
				}
			},
		})
	}

	items = append(items, components.MenuItem{
		Label:       "Vocabulary Vault",
		Description: fmt.Sprintf("%d words collected", len(h.user.VocabVault)),
		Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: h.vaultFactory()}
			}
		},
	})
	items = append(items, components.MenuItem{
		Label:       "Retake placement test",
		Description: "Refresh your band estimate",
		Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: h.retakeFactory()}
			}
		},
	})
	items = append(items, components.MenuItem{
		Label:       fmt.Sprintf("Switch to %s track", otherTrack(h.user.Track)),
		Description: "Changes the material every session uses",
		Action:      func() tea.Cmd { return h.switchTrack() },
	})
	return components.NewMenu(items)
}

func (h *HomeScreen) switchTrack() tea.Cmd {
	updated := h.user
	if updated.Track == profile.TrackAcademic {
		updated.Track = profile.TrackGeneral
	} else {
		updated.Track = profile.TrackAcademic
	}
	if err := h.profiles.Save(context.Background(), &updated); err != nil {
		h.errMsg = err.Error()
		return nil
	}
	return func() tea.Msg { return screen.ProfileUpdatedMsg{Profile: updated} }
}

func (h *HomeScreen) Title() string {
	return "Dashboard"
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.ProfileUpdatedMsg:
		selected := h.menu.Selected
		h.user = msg.Profile
		h.menu = h.buildMenu()
		h.menu.Selected = selected
		return h, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		h.menu, cmd = h.menu.Update(msg)
		return h, cmd
	}
	return h, nil
}

func (h *HomeScreen) View(width, height int) string {
	greeting := theme.Title.Render(fmt.Sprintf("Hi, %s!", h.user.Name))

	estimate := "not assessed yet"
	if h.user.EstimatedBand != nil {
		estimate = fmt.Sprintf("Band %.1f", *h.user.EstimatedBand)
	}
	status := theme.Subtitle.Render(fmt.Sprintf(
		"%s track · current estimate %s · target %.1f",
		titleCase(string(h.user.Track)), estimate, h.user.TargetBand))

	left := theme.Card.Render(h.menu.View())
	right := theme.Card.Render(h.renderActivity())

	columns := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	if layout.IsCompactWidth(width) {
		columns = left
	}

	body := greeting + "\n" + status + "\n\n" + columns
	if h.errMsg != "" {
		body += "\n" + theme.Incorrect.Render(h.errMsg)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func (h *HomeScreen) renderActivity() string {
	var b strings.Builder
	b.WriteString(theme.Selected.Render("Recent activity") + "\n")

	log := h.user.ActivityLog
	if len(log) == 0 {
		b.WriteString(theme.Hint.Render("No sessions yet. Pick a skill to start."))
		return b.String()
	}

	start := len(log) - recentActivityCount
	if start < 0 {
		start = 0
	}
	for i := len(log) - 1; i >= start; i-- {
		rec := log[i]
		b.WriteString(fmt.Sprintf("%s  %s\n",
			theme.Hint.Render(rec.Timestamp.Format("Jan 02")),
			theme.Body.Render(fmt.Sprintf("%s — %s", titleCase(string(rec.Skill)), rec.Title))))
	}
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func otherTrack(t profile.ExamTrack) string {
	if t == profile.TrackAcademic {
		return "General Training"
	}
	return "Academic"
}
