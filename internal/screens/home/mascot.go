package home

import (
	"charm.land/lipgloss/v2"

	"github.com/gakuroku/gakuroku/internal/stats"
	"github.com/gakuroku/gakuroku/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota
	MascotCelebrating               // streak just reached a milestone
	MascotAlert                     // streak broken
)

const mascotIdle = ` /\_/\
( o.o )
 > 学 <`

const mascotCelebrating = ` /\_/\  ✦
( ^.^ )
 > 学 <`

const mascotAlert = ` /\_/\
( o.o ) !
 > 学 <`

// mascotFor picks the variant for an overview. A nil overview is idle.
func mascotFor(ov *stats.Overview) MascotVariant {
	switch {
	case ov == nil:
		return MascotIdle
	case ov.CurrentStreak > 0 && stats.NextMilestone(ov.CurrentStreak-1) == ov.CurrentStreak:
		return MascotCelebrating
	case ov.CurrentStreak == 0 && ov.LongestStreak > 0:
		return MascotAlert
	}
	return MascotIdle
}

// RenderMascot returns the mascot art for the given variant.
func RenderMascot(v MascotVariant) string {
	art, fg := mascotIdle, theme.Secondary
	switch v {
	case MascotCelebrating:
		art, fg = mascotCelebrating, theme.Accent
	case MascotAlert:
		art, fg = mascotAlert, theme.Primary
	}
	return lipgloss.NewStyle().Foreground(fg).Render(art)
}
