package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/gakuroku/gakuroku/internal/stats"
	"github.com/gakuroku/gakuroku/internal/ui/theme"
)

const titleFull = `█▀▀ ▄▀█ █▄▀ █ █ █▀█ █▀█ █▄▀ █ █
█▄█ █▀█ █ █ █▄█ █▀▄ █▄█ █ █ █▄█`

const titleCompact = "学 録 · G A K U R O K U"

func (h *HomeScreen) View(width, height int) string {
	compact := height < 22 || width < 90
	cw := contentWidth(width)

	sections := []string{renderTitle(cw, compact)}
	if !compact {
		sections = append(sections, center(RenderMascot(mascotFor(h.overview)), cw))
	}
	if h.overview != nil {
		sections = append(sections, renderStatsBar(h.overview, cw, compact))
	}

	switch {
	case h.loading:
		sections = append(sections, center(theme.Hint.Render("Loading lists…"), cw))
	case h.err != nil:
		sections = append(sections, center(theme.Failure.Render(fmt.Sprintf("Couldn't load lists: %v", h.err)), cw))
	case len(h.lists) == 0:
		sections = append(sections, center(theme.Hint.Render("No lists yet. Create one with: gakuroku lists create <name>"), cw))
	}
	sections = append(sections, center(h.menu.View(), cw))

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(sections, "\n\n"))
}

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 64)
}

func center(s string, cw int) string {
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(s)
}

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	if compact {
		return center(style.Render(titleCompact), cw)
	}
	return center(style.Render(titleFull), cw)
}

func renderStatsBar(ov *stats.Overview, cw int, compact bool) string {
	streak := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	mastered := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	reviews := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	var text string
	if compact {
		text = fmt.Sprintf("%s %s %s",
			streak.Render(fmt.Sprintf("🔥%d", ov.CurrentStreak)),
			mastered.Render(fmt.Sprintf("★%d", ov.MasteredWords)),
			reviews.Render(fmt.Sprintf("↻%d", ov.TotalReviews)),
		)
	} else {
		text = fmt.Sprintf("%s  %s  %s",
			streak.Render(fmt.Sprintf("🔥 %d DAY STREAK", ov.CurrentStreak)),
			mastered.Render(fmt.Sprintf("★ %d LEARNED", ov.MasteredWords)),
			reviews.Render(fmt.Sprintf("↻ %d REVIEWS", ov.TotalReviews)),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(text)
}
