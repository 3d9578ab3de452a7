package study

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	core "github.com/gakuroku/gakuroku/internal/study"
	"github.com/gakuroku/gakuroku/internal/ui/layout"
)

type keyMap struct {
	Next       key.Binding
	Prev       key.Binding
	Flip       key.Binding
	NotLearned key.Binding
	Learned    key.Binding
	Shuffle    key.Binding
	Reshuffle  key.Binding
	Restart    key.Binding
	Note       key.Binding
	Explain    key.Binding
	Retry      key.Binding
	Save       key.Binding
	Cancel     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Next:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "Next")),
		Prev:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "Prev")),
		Flip:       key.NewBinding(key.WithKeys("space"), key.WithHelp("Space", "Flip")),
		NotLearned: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "Not learned")),
		Learned:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "Learned")),
		Shuffle:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "Shuffle")),
		Reshuffle:  key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "Reshuffle")),
		Restart:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Review again")),
		Note:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "Note")),
		Explain:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "Explain")),
		Retry:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Retry")),
		Save:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Save")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Cancel")),
	}
}

// signal maps a key press to a dispatcher signal.
func (k keyMap) signal(msg tea.KeyPressMsg) core.Signal {
	switch {
	case key.Matches(msg, k.Next):
		return core.SignalAdvance
	case key.Matches(msg, k.Prev):
		return core.SignalRetreat
	case key.Matches(msg, k.Flip):
		return core.SignalFlip
	case key.Matches(msg, k.NotLearned):
		return core.SignalMarkNotLearned
	case key.Matches(msg, k.Learned):
		return core.SignalMarkLearned
	case key.Matches(msg, k.Shuffle):
		return core.SignalToggleShuffle
	case key.Matches(msg, k.Restart):
		return core.SignalRestart
	}
	return core.SignalNone
}

func hints(bindings ...key.Binding) []layout.KeyHint {
	out := make([]layout.KeyHint, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		out = append(out, layout.KeyHint{Key: h.Key, Description: h.Desc})
	}
	return out
}
