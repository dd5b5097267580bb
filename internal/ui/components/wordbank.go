package components

import (
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/myenglish/internal/ui/theme"
)

// WordBank is a cursor over the word tokens of a sentence-ordering game.
// Tokens are identified by their index in Words; Used marks the ones
// already placed.
type WordBank struct {
	Words  []string
	Used   []int
	Cursor int
}

// NewWordBank creates a word bank with the cursor on the first free token.
func NewWordBank(words []string, used []int) WordBank {
	w := WordBank{Words: words, Used: used}
	w.Cursor = w.nextFree(-1, 1)
	return w
}

// Sync replaces the token state after the game changed, keeping the
// cursor on a free token.
func (w WordBank) Sync(words []string, used []int) WordBank {
	w.Words, w.Used = words, used
	if w.Cursor < 0 || w.Cursor >= len(words) || slices.Contains(used, w.Cursor) {
		w.Cursor = w.nextFree(w.Cursor, 1)
		if w.Cursor < 0 {
			w.Cursor = w.nextFree(len(words), -1)
		}
	}
	return w
}

// Update moves the cursor across free tokens.
func (w WordBank) Update(msg tea.Msg) WordBank {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return w
	}
	switch kmsg.String() {
	case "left", "h":
		if i := w.nextFree(w.Cursor, -1); i >= 0 {
			w.Cursor = i
		}
	case "right", "l":
		if i := w.nextFree(w.Cursor, 1); i >= 0 {
			w.Cursor = i
		}
	}
	return w
}

// Current returns the token under the cursor, or -1 when none is free.
func (w WordBank) Current() int {
	if w.Cursor < 0 || w.Cursor >= len(w.Words) || slices.Contains(w.Used, w.Cursor) {
		return -1
	}
	return w.Cursor
}

// View renders the free tokens as chips.
func (w WordBank) View() string {
	var chips []string
	for i, word := range w.Words {
		if slices.Contains(w.Used, i) {
			continue
		}
		if i == w.Cursor {
			chips = append(chips, theme.ChipSelected.Render(word))
		} else {
			chips = append(chips, theme.Chip.Render(word))
		}
	}
	if len(chips) == 0 {
		return lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("(all words placed)")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

// SentenceView renders the placed tokens, numbered so they can be removed.
func SentenceView(words []string, used []int) string {
	if len(used) == 0 {
		return lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("Pick words to build the sentence")
	}
	parts := make([]string, len(used))
	for i, idx := range used {
		parts[i] = words[idx]
	}
	return lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(strings.Join(parts, " "))
}

func (w WordBank) nextFree(from, step int) int {
	for i := from + step; i >= 0 && i < len(w.Words); i += step {
		if !slices.Contains(w.Used, i) {
			return i
		}
	}
	return -1
}
