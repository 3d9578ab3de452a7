package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette: ink on washi, with vermilion for emphasis.
var (
	Primary   = lipgloss.Color("#E94E3C") // Vermilion
	Secondary = lipgloss.Color("#4FA3A5") // Celadon
	Accent    = lipgloss.Color("#F2B544") // Gold leaf
	Success   = lipgloss.Color("#6CBF62") // Matcha
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F5F1E8") // Washi
	TextDim   = lipgloss.Color("#9A968C") // Stone
	BgDark    = lipgloss.Color("#15171C") // Sumi
	BgCard    = lipgloss.Color("#23262E") // Slate ink
	Border    = lipgloss.Color("#3A3F4B")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	// Headword renders the large front-of-card word.
	Headword = lipgloss.NewStyle().
			Bold(true).
			Foreground(Text)

	Reading = lipgloss.NewStyle().
		Foreground(Secondary)
)

// Layout
var (
	Header = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Footer = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 4)

	// FlippedCard is the card border once the back is showing.
	FlippedCard = Card.
			BorderForeground(Secondary)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Learned = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	NotLearned = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	Failure = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	Badge = lipgloss.NewStyle().
		Foreground(BgDark).
		Background(Accent).
		Padding(0, 1)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)

// HeatLevels shades heatmap cells from no reviews to many.
var HeatLevels = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(Border),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#2F5D3A")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#3F8A4C")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#55B45F")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#7EDC84")),
}
