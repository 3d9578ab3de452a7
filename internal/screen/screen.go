package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/gakuroku/gakuroku/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// InputCapturer is implemented by screens that sometimes own the keyboard,
// such as while a text field is focused. The app then forwards esc to the
// screen instead of popping it.
type InputCapturer interface {
	CapturingInput() bool
}

// StatusProvider lets a screen put a short status in the header.
type StatusProvider interface {
	Status() string
}

// Resumer is implemented by screens that refresh when they become active
// again after the screen above them is popped.
type Resumer interface {
	Resume() tea.Cmd
}
