// Package vault lists the cross-skill vocabulary collection and lets the
// student toggle words as mastered.
package vault

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/bandup/internal/profile"
	"github.com/abhisek/bandup/internal/screen"
	"github.com/abhisek/bandup/internal/store"
	"github.com/abhisek/bandup/internal/ui/layout"
	"github.com/abhisek/bandup/internal/ui/theme"
)

type toggledMsg struct {
	profile screen.ProfileUpdatedMsg
	err     error
}

// VaultScreen shows the vocabulary vault.
type VaultScreen struct {
	profiles store.ProfileRepo
	user     profile.UserProfile
	selected int
	offset   int
	errMsg   string
}

var _ screen.Screen = (*VaultScreen)(nil)
var _ screen.KeyHintProvider = (*VaultScreen)(nil)

// New creates the vault screen over the current profile.
func New(profiles store.ProfileRepo, user profile.UserProfile) *VaultScreen {
	return &VaultScreen{
		profiles: profiles,
		user:     user,
	}
}

func (v *VaultScreen) Title() string {
	return "Vocabulary Vault"
}

func (v *VaultScreen) Init() tea.Cmd {
	return nil
}

func (v *VaultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Toggle mastered"},
		{Key: "Esc", Description: "Back"},
	}
}

func (v *VaultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.ProfileUpdatedMsg:
		v.user = msg.Profile
		if v.selected >= len(v.user.VocabVault) {
			v.selected = len(v.user.VocabVault) - 1
		}
		return v, nil

	case toggledMsg:
		if msg.err != nil {
			v.errMsg = msg.err.Error()
			return v, nil
		}
		return v, func() tea.Msg { return msg.profile }

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
		case "down", "j":
			if v.selected < len(v.user.VocabVault)-1 {
				v.selected++
			}
		case "enter":
			return v, v.toggle()
		}
	}
	return v, nil
}

// toggle flips mastery for the selected word and persists the new profile.
func (v *VaultScreen) toggle() tea.Cmd {
	if v.selected < 0 || v.selected >= len(v.user.VocabVault) {
		return nil
	}
	word := v.user.VocabVault[v.selected].Word

	return func() tea.Msg {
		ctx := context.Background()
		p, err := v.profiles.Load(ctx)
		if err != nil || p == nil {
			return toggledMsg{err: fmt.Errorf("loading profile: %w", err)}
		}
		updated := p.ToggleMastery(word)
		if err := v.profiles.Save(ctx, &updated); err != nil {
			return toggledMsg{err: err}
		}
		return toggledMsg{profile: screen.ProfileUpdatedMsg{Profile: updated}}
	}
}

func (v *VaultScreen) View(width, height int) string {
	items := v.user.VocabVault
	if len(items) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("No words yet. Complete a session to start collecting vocabulary."))
	}

	mastered := 0
	for _, item := range items {
		if item.Mastered {
			mastered++
		}
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Vocabulary Vault") + "\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d words · %d mastered", len(items), mastered)) + "\n\n")

	visible := height - 8
	if visible < 3 {
		visible = 3
	}
	if v.selected < v.offset {
		v.offset = v.selected
	}
	if v.selected >= v.offset+visible {
		v.offset = v.selected - visible + 1
	}

	end := v.offset + visible
	if end > len(items) {
		end = len(items)
	}
	for i := v.offset; i < end; i++ {
		item := items[i]

		mark := "○"
		style := theme.Body
		if item.Mastered {
			mark = "●"
			style = theme.Correct
		}
		line := fmt.Sprintf("%s %-24s %s · %s", mark, item.Word,
			string(item.SourceSkill), item.DateAdded.Format("Jan 02"))

		if i == v.selected {
			b.WriteString(theme.Selected.Render("▸ "+line) + "\n")
		} else {
			b.WriteString("  " + style.Render(line) + "\n")
		}
	}

	if v.errMsg != "" {
		b.WriteString("\n" + theme.Incorrect.Render(v.errMsg))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Card.Render(b.String()))
}
