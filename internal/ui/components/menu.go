package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/myenglish/internal/ui/theme"
)

// MenuItem is one row of a Menu. Locked rows are drawn with a padlock
// and the cursor skips them.
type MenuItem struct {
	Label    string
	Detail   string // shown dimmed next to the selected row only
	Badge    string // short marker after the label, e.g. "✓"
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list driven by the arrow keys (or j/k), home/end,
// and enter.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu selects the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(0, 1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

func (m Menu) Init() tea.Cmd {
	return nil
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		m.move(m.Selected-1, -1)
	case "down", "j":
		m.move(m.Selected+1, 1)
	case "home", "g":
		m.move(0, 1)
	case "end", "G":
		m.move(len(m.Items)-1, -1)
	case "enter":
		if item, ok := m.Current(); ok && item.Action != nil {
			return m, item.Action()
		}
	}
	return m, nil
}

// move selects the first enabled item from index from, stepping by dir.
// The selection is unchanged when there is none.
func (m *Menu) move(from, dir int) {
	for i := from; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

// Current returns the selected item, or false when it is locked or the
// menu is empty.
func (m Menu) Current() (MenuItem, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Items) || m.Items[m.Selected].Disabled {
		return MenuItem{}, false
	}
	return m.Items[m.Selected], true
}

func (m Menu) View() string {
	detail := lipgloss.NewStyle().Foreground(theme.TextDim)
	badge := lipgloss.NewStyle().Foreground(theme.Success)

	lines := make([]string, len(m.Items))
	for i, item := range m.Items {
		var suffix string
		if item.Badge != "" {
			suffix = " " + badge.Render(item.Badge)
		}
		switch {
		case item.Disabled:
			lines[i] = theme.Locked.Render("  🔒 " + item.Label)
		case i == m.Selected:
			lines[i] = theme.Selected.Render("  ▸ "+item.Label) + suffix
			if item.Detail != "" {
				lines[i] += "  " + detail.Render(item.Detail)
			}
		default:
			lines[i] = theme.Unselected.Render("    "+item.Label) + suffix
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
