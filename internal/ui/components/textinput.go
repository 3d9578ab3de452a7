package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput wraps bubbles/textinput for single-line editing such as card
// notes and list names. It starts blurred.
type TextInput struct {
	Model textinput.Model
}

// NewTextInput creates a text input limited to charLimit runes.
func NewTextInput(placeholder string, charLimit, width int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "✎ "
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	if width > 0 {
		ti.SetWidth(width)
	}
	return TextInput{Model: ti}
}

// Edit focuses the input with value pre-filled and the cursor at the end.
func (t *TextInput) Edit(value string) tea.Cmd {
	t.Model.SetValue(value)
	t.Model.CursorEnd()
	return t.Model.Focus()
}

// Done blurs the input and returns its value.
func (t *TextInput) Done() string {
	t.Model.Blur()
	return t.Model.Value()
}

// Focused reports whether the input has keyboard focus.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// Update forwards messages while focused.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if !t.Model.Focused() {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	return t.Model.View()
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}
