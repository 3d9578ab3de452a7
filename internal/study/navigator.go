package study

// Phase is the navigation state of a session.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseBrowsing
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseBrowsing:
		return "browsing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Navigator tracks the position within the ordered view.
//
// index stays within [0, total-1] while browsing. Finished is represented by
// the one-past-the-end index == total and only exists when total > 0.
// With total == 0 every transition is a no-op.
type Navigator struct {
	index    int
	total    int
	flipped  bool
	finished bool
}

// Phase reports the current navigation state.
func (n *Navigator) Phase() Phase {
	switch {
	case n.total == 0:
		return PhaseEmpty
	case n.finished:
		return PhaseFinished
	default:
		return PhaseBrowsing
	}
}

func (n *Navigator) Index() int { return n.index }
func (n *Navigator) Total() int { return n.total }
func (n *Navigator) IsFlipped() bool { return n.flipped }
func (n *Navigator) IsFinished() bool { return n.finished }

// Next advances one card. Advancing from the last card enters Finished.
func (n *Navigator) Next() {
	if n.total == 0 || n.finished {
		return
	}
	n.flipped = false
	if n.index >= n.total-1 {
		n.index = n.total
		n.finished = true
		return
	}
	n.index++
}

// Prev steps back one card. From Finished it returns to the last card.
func (n *Navigator) Prev() {
	if n.total == 0 {
		return
	}
	if n.finished {
		n.finished = false
		n.flipped = false
		n.index = n.total - 1
		return
	}
	if n.index == 0 {
		return
	}
	n.index--
	n.flipped = false
}

// ToggleFlip turns the current card over.
func (n *Navigator) ToggleFlip() {
	if n.total == 0 || n.finished {
		return
	}
	n.flipped = !n.flipped
}

// Restart returns to the first card.
func (n *Navigator) Restart() {
	n.index = 0
	n.flipped = false
	n.finished = false
}

// Unfinish leaves Finished (if set) and clamps the index to the last card.
// The current card is unchanged when the index was already in range.
func (n *Navigator) Unfinish() {
	n.flipped = false
	n.finished = false
	n.clamp()
}

// Resize adapts the navigator to a refreshed card count. An unchanged count
// leaves the state untouched. A session that has finished stays finished
// with the sentinel moved to the new end; otherwise an out-of-range index
// is clamped to the last card.
func (n *Navigator) Resize(total int) {
	if total < 0 {
		total = 0
	}
	if total == n.total {
		return
	}
	n.total = total
	if total == 0 {
		n.index = 0
		n.flipped = false
		n.finished = false
		return
	}
	if n.finished {
		n.index = total
		return
	}
	if n.index > total-1 {
		n.index = total - 1
		n.flipped = false
	}
}

func (n *Navigator) clamp() {
	if n.total == 0 {
		n.index = 0
		return
	}
	if n.index > n.total-1 {
		n.index = n.total - 1
	}
}
