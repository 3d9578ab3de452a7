package study

// Signal is a discrete learner input.
type Signal int

const (
	SignalNone Signal = iota
	SignalAdvance
	SignalRetreat
	SignalFlip
	SignalMarkNotLearned
	SignalMarkLearned
	SignalToggleShuffle
	SignalRestart
)

func (s Signal) String() string {
	switch s {
	case SignalAdvance:
		return "advance"
	case SignalRetreat:
		return "retreat"
	case SignalFlip:
		return "flip"
	case SignalMarkNotLearned:
		return "mark-not-learned"
	case SignalMarkLearned:
		return "mark-learned"
	case SignalToggleShuffle:
		return "toggle-shuffle"
	case SignalRestart:
		return "restart"
	default:
		return "none"
	}
}

// Input is a signal together with where it came from.
type Input struct {
	Signal Signal

	// FromKeyboard is set for key presses, as opposed to activating an
	// on-screen control.
	FromKeyboard bool

	// TextFocused is set while a text entry has focus.
	TextFocused bool
}

// Dispatch routes an input to the matching transition. Keyboard input is
// dropped while text entry has focus. Once finished only SignalRestart is
// accepted. Signals without a mapping are ignored.
//
// A mark returns the mutation the caller must persist.
func (s *Session) Dispatch(in Input) (*Mutation, error) {
	if in.FromKeyboard && in.TextFocused {
		return nil, nil
	}

	if s.nav.IsFinished() {
		if in.Signal == SignalRestart {
			s.ResetSession()
		}
		return nil, nil
	}

	cur := s.current()
	if cur == nil {
		return nil, nil
	}

	switch in.Signal {
	case SignalAdvance:
		s.Next()
	case SignalRetreat:
		s.Prev()
	case SignalFlip:
		s.ToggleFlip()
	case SignalToggleShuffle:
		s.ToggleShuffle()
	case SignalMarkNotLearned:
		return s.MarkLearned(cur.ID, false)
	case SignalMarkLearned:
		return s.MarkLearned(cur.ID, true)
	}
	return nil, nil
}
