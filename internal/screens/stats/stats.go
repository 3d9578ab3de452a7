// Package stats is the statistics screen: overview numbers and a review
// heatmap for the last year.
package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/gakuroku/gakuroku/internal/screen"
	"github.com/gakuroku/gakuroku/internal/stats"
	"github.com/gakuroku/gakuroku/internal/ui/layout"
	"github.com/gakuroku/gakuroku/internal/ui/theme"
)

type loadedMsg struct {
	Overview *stats.Overview
	Days     []stats.DayCount
	Err      error
}

// StatsScreen renders study statistics.
type StatsScreen struct {
	provider stats.Provider
	overview *stats.Overview
	days     []stats.DayCount
	err      error
}

var _ screen.Screen = (*StatsScreen)(nil)

// New creates the statistics screen.
func New(provider stats.Provider) *StatsScreen {
	return &StatsScreen{provider: provider}
}

func (s *StatsScreen) Init() tea.Cmd {
	p := s.provider
	return func() tea.Msg {
		ctx := context.Background()
		ov, err := p.Overview(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		days, err := p.Heatmap(ctx)
		return loadedMsg{Overview: ov, Days: days, Err: err}
	}
}

func (s *StatsScreen) Title() string { return "Statistics" }

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(loadedMsg); ok {
		s.overview, s.days, s.err = msg.Overview, msg.Days, msg.Err
	}
	return s, nil
}

func (s *StatsScreen) View(width, height int) string {
	switch {
	case s.err != nil:
		return layout.Center(theme.Failure.Render(fmt.Sprintf("Couldn't load statistics: %v", s.err)), width, height)
	case s.overview == nil:
		return layout.Center(theme.Hint.Render("Loading…"), width, height)
	}

	ov := s.overview
	numbers := lipgloss.JoinHorizontal(lipgloss.Top,
		tile("Reviews", ov.TotalReviews),
		tile("Learned", ov.MasteredWords),
		tile("Streak", ov.CurrentStreak),
		tile("Best", ov.LongestStreak),
	)

	next := stats.NextMilestone(ov.CurrentStreak)
	milestone := theme.Hint.Render(fmt.Sprintf("%d more day(s) to a %d-day streak", next-ov.CurrentStreak, next))

	weeks := max((width-8)/2, 4)
	body := lipgloss.JoinVertical(lipgloss.Center,
		numbers,
		milestone,
		"",
		RenderHeatmap(s.days, weeks),
	)
	return layout.Center(body, width, height)
}

func tile(label string, n int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(14).
		Align(lipgloss.Center).
		Render(theme.Headword.Render(fmt.Sprint(n)) + "\n" + theme.Hint.Render(label))
}

// RenderHeatmap draws days as a GitHub-style grid: one column per week,
// Sunday at the top, keeping at most the last maxWeeks columns.
func RenderHeatmap(days []stats.DayCount, maxWeeks int) string {
	if len(days) == 0 {
		return ""
	}

	peak := 0
	for _, d := range days {
		peak = max(peak, d.Count)
	}

	// Pad the front so the first column starts on a Sunday.
	lead := 0
	if first, err := time.Parse(time.DateOnly, days[0].Date); err == nil {
		lead = int(first.Weekday())
	}
	cells := make([]int, lead, lead+len(days))
	for i := range cells {
		cells[i] = -1
	}
	for _, d := range days {
		cells = append(cells, d.Count)
	}

	weeks := (len(cells) + 6) / 7
	start := max(weeks-maxWeeks, 0)

	var b strings.Builder
	for row := range 7 {
		for w := start; w < weeks; w++ {
			i := w*7 + row
			switch {
			case i >= len(cells) || cells[i] < 0:
				b.WriteString("  ")
			default:
				b.WriteString(theme.HeatLevels[level(cells[i], peak)].Render("■") + " ")
			}
		}
		if row < 6 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// level buckets a count into one of the heat levels relative to peak.
func level(count, peak int) int {
	if count <= 0 || peak <= 0 {
		return 0
	}
	n := len(theme.HeatLevels) - 1
	return min(1+(count-1)*n/peak, n)
}
