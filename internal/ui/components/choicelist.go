package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/dsatutor/internal/ui/theme"
)

// ChoiceList is a vertical selector over a fixed set of labels, used
// for both quick replies and multiple-choice answers.
type ChoiceList struct {
	Labels   []string
	Selected int
	Focused  bool
}

// NewChoiceList creates a choice list over labels.
func NewChoiceList(labels []string) ChoiceList {
	return ChoiceList{Labels: labels, Focused: true}
}

// Update handles keyboard navigation. It returns the chosen label and
// true when a selection is confirmed.
func (c ChoiceList) Update(msg tea.Msg) (ChoiceList, string, bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || !c.Focused || len(c.Labels) == 0 {
		return c, "", false
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if c.Selected > 0 {
			c.Selected--
		}
	case "down", "j":
		if c.Selected < len(c.Labels)-1 {
			c.Selected++
		}
	case "enter":
		return c, c.Labels[c.Selected], true
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		i := int(key[0] - '1')
		if i < len(c.Labels) {
			c.Selected = i
			return c, c.Labels[i], true
		}
	}

	return c, "", false
}

// View renders the choice list.
func (c ChoiceList) View() string {
	var s string
	for i, label := range c.Labels {
		prefix := "  "
		if i == c.Selected && c.Focused {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%d) %s", prefix, i+1, label)

		switch {
		case i == c.Selected && c.Focused:
			s += theme.Selected.Render(line) + "\n"
		case c.Focused:
			s += theme.Unselected.Render(line) + "\n"
		default:
			s += lipgloss.NewStyle().Foreground(theme.TextDim).Render(line) + "\n"
		}
	}
	return s
}
