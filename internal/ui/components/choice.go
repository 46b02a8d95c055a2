package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/bandup/internal/ui/theme"
)

// Choice is a single-select option list. Unlike a quiz widget it never
// reveals a correct answer: placement questions are scored at the end and
// true/false answers are reviewed by the tutor, so the component only
// records what was picked.
type Choice struct {
	Prompt   string
	Options  []string
	Selected int
	Chosen   int
	focused  bool
}

// NewChoice creates a choice list with nothing picked.
func NewChoice(prompt string, options []string) Choice {
	return Choice{
		Prompt:  prompt,
		Options: options,
		Chosen:  -1,
		focused: true,
	}
}

// Init returns nil.
func (c Choice) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation and selection.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	if !c.focused {
		return c, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if c.Selected > 0 {
			c.Selected--
		}
	case "down", "j":
		if c.Selected < len(c.Options)-1 {
			c.Selected++
		}
	case "enter", " ":
		c.Chosen = c.Selected
	}

	return c, nil
}

// Picked reports whether an option has been chosen.
func (c Choice) Picked() bool {
	return c.Chosen >= 0
}

// Value returns the chosen option text, empty when nothing is picked.
func (c Choice) Value() string {
	if c.Chosen < 0 || c.Chosen >= len(c.Options) {
		return ""
	}
	return c.Options[c.Chosen]
}

// SetFocus controls whether the list reacts to keys.
func (c *Choice) SetFocus(focused bool) {
	c.focused = focused
}

// View renders the option list.
func (c Choice) View() string {
	var s string
	if c.Prompt != "" {
		s = lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(c.Prompt) + "\n\n"
	}

	for i, opt := range c.Options {
		mark := "( )"
		if i == c.Chosen {
			mark = "(•)"
		}
		line := fmt.Sprintf("  %s %s", mark, opt)

		switch {
		case i == c.Selected && c.focused:
			s += lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("▸"+line[1:]) + "\n"
		case i == c.Chosen:
			s += lipgloss.NewStyle().Foreground(theme.Secondary).Render(line) + "\n"
		default:
			s += lipgloss.NewStyle().Foreground(theme.Text).Render(line) + "\n"
		}
	}

	return s
}
