package study

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func navigator(total int) *Navigator {
	n := &Navigator{}
	n.Resize(total)
	return n
}

func TestNavigatorNextFinishesExactlyOnce(t *testing.T) {
	for total := 1; total <= 6; total++ {
		n := navigator(total)
		for i := 0; i < total-1; i++ {
			n.Next()
			assert.False(t, n.IsFinished(), "total=%d step=%d", total, i+1)
			assert.Equal(t, i+1, n.Index())
		}
		n.Next()
		assert.True(t, n.IsFinished(), "total=%d", total)
		assert.Equal(t, total, n.Index())
		assert.Equal(t, PhaseFinished, n.Phase())

		n.Next()
		assert.Equal(t, total, n.Index(), "next from finished is a no-op")
	}
}

func TestNavigatorPrevAtStartIsNoop(t *testing.T) {
	n := navigator(3)
	n.ToggleFlip()
	before := *n
	n.Prev()
	assert.Equal(t, before, *n)
}

func TestNavigatorPrevFromFinished(t *testing.T) {
	n := navigator(2)
	n.Next()
	n.Next()
	assert.True(t, n.IsFinished())

	n.Prev()
	assert.False(t, n.IsFinished())
	assert.Equal(t, 1, n.Index())
	assert.False(t, n.IsFlipped())
}

func TestNavigatorFlip(t *testing.T) {
	n := navigator(2)
	n.ToggleFlip()
	assert.True(t, n.IsFlipped())
	n.Next()
	assert.False(t, n.IsFlipped(), "moving clears flip")
	n.ToggleFlip()
	n.Prev()
	assert.False(t, n.IsFlipped())

	n.Next()
	n.Next()
	n.ToggleFlip()
	assert.False(t, n.IsFlipped(), "flip is a no-op when finished")
}

func TestNavigatorEmpty(t *testing.T) {
	n := navigator(0)
	assert.Equal(t, PhaseEmpty, n.Phase())
	n.Next()
	n.Prev()
	n.ToggleFlip()
	assert.Equal(t, Navigator{}, *n)
}

func TestNavigatorResize(t *testing.T) {
	tests := []struct {
		name         string
		total        int
		steps        int
		flip         bool
		resize       int
		wantIndex    int
		wantFinished bool
		wantFlipped  bool
	}{
		{"same count untouched", 5, 2, true, 5, 2, false, true},
		{"shrink clamps", 5, 4, true, 3, 2, false, false},
		{"shrink in range keeps flip", 5, 1, true, 3, 1, false, true},
		{"grow keeps index", 3, 2, false, 6, 2, false, false},
		{"finished follows end", 3, 3, false, 2, 2, true, false},
		{"finished grow", 3, 3, false, 4, 4, true, false},
		{"to empty", 3, 1, true, 0, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := navigator(tt.total)
			for i := 0; i < tt.steps; i++ {
				n.Next()
			}
			if tt.flip {
				n.ToggleFlip()
			}
			n.Resize(tt.resize)
			assert.Equal(t, tt.wantIndex, n.Index())
			assert.Equal(t, tt.wantFinished, n.IsFinished())
			assert.Equal(t, tt.wantFlipped, n.IsFlipped())
		})
	}
}

func TestNavigatorUnfinish(t *testing.T) {
	n := navigator(3)
	n.Next()
	n.Next()
	n.Next()
	n.Unfinish()
	assert.Equal(t, 2, n.Index())
	assert.False(t, n.IsFinished())

	n = navigator(3)
	n.Next()
	n.Unfinish()
	assert.Equal(t, 1, n.Index())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "empty", PhaseEmpty.String())
	assert.Equal(t, "browsing", PhaseBrowsing.String())
	assert.Equal(t, "finished", PhaseFinished.String())
}
