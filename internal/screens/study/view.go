package study

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/gakuroku/gakuroku/internal/flashcard"
	core "github.com/gakuroku/gakuroku/internal/study"
	"github.com/gakuroku/gakuroku/internal/ui/components"
	"github.com/gakuroku/gakuroku/internal/ui/layout"
	"github.com/gakuroku/gakuroku/internal/ui/theme"
)

func (s *StudyScreen) View(width, height int) string {
	st := s.session.State()
	var body string
	switch {
	case st.IsLoading:
		body = s.spinner.View() + " " + theme.Hint.Render("Loading cards…")
	case st.IsError:
		body = renderError(st.Err)
	case st.Total == 0:
		body = theme.Hint.Render("This list has no cards yet.\nAdd some with: gakuroku cards add <list-id> <entry-id>")
	case st.IsFinished:
		body = renderSummary(s.session.Summary())
	default:
		body = s.renderCard(st, width)
	}

	if line := s.statusLine(); line != "" {
		body += "\n\n" + line
	}
	return layout.Center(body, width, height)
}

func (s *StudyScreen) renderCard(st core.State, width int) string {
	c := st.Current
	if c == nil {
		return ""
	}
	cardWidth := min(max(width-8, 30), 72)

	var b strings.Builder
	b.WriteString(components.NewProgressBar("", st.Index+1, st.Total, cardWidth).View())
	b.WriteString("\n\n")

	style := theme.Card
	if st.IsFlipped {
		style = theme.FlippedCard
	}
	b.WriteString(style.Width(cardWidth).Render(renderFace(c, st.IsFlipped, cardWidth-10)))
	b.WriteString("\n")

	b.WriteString(renderLearned(c.IsMemorized, st.IsMarking))
	b.WriteString("\n")

	switch {
	case s.note.Focused():
		b.WriteString("\n" + s.note.View())
	case c.Note != "":
		b.WriteString("\n" + theme.Hint.Render("✎ "+c.Note))
	}

	if st.IsFlipped {
		if extra := s.renderExplanation(c.Word.ID, cardWidth); extra != "" {
			b.WriteString("\n\n" + extra)
		}
	}
	return b.String()
}

// renderFace draws the front (headword) or back (reading and senses).
func renderFace(c *flashcard.Flashcard, flipped bool, width int) string {
	w := c.Word
	var lines []string

	head := theme.Headword.Render(w.Headword())
	if w.IsCommon {
		head += "  " + theme.Badge.Render("common")
	}
	lines = append(lines, head)

	if !flipped {
		lines = append(lines, "", theme.Hint.Render("space to flip"))
		return lipgloss.JoinVertical(lipgloss.Center, lines...)
	}

	if w.Kanji != "" {
		lines = append(lines, theme.Reading.Render(w.Kana))
	}
	lines = append(lines, "")
	for i, sense := range w.Senses {
		line := fmt.Sprintf("%d. %s", i+1, strings.Join(sense.Glosses, "; "))
		if len(sense.PartsOfSpeech) > 0 {
			line += "  " + theme.Hint.Render(strings.Join(sense.PartsOfSpeech, ", "))
		}
		lines = append(lines, lipgloss.NewStyle().Width(width).Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func renderLearned(learned, marking bool) string {
	var label string
	if learned {
		label = theme.Learned.Render("● learned")
	} else {
		label = theme.NotLearned.Render("○ not learned")
	}
	if marking {
		label += theme.Hint.Render("  saving…")
	}
	return label
}

func (s *StudyScreen) renderExplanation(entryID string, width int) string {
	if s.explaining {
		return s.spinner.View() + " " + theme.Hint.Render("Writing examples…")
	}
	if s.explainErr != "" {
		return theme.Failure.Render(s.explainErr)
	}
	if !s.explainer.Enabled() {
		return ""
	}
	note, ok := s.explainer.Cached(entryID)
	if !ok {
		return ""
	}

	var b strings.Builder
	for _, sent := range note.Sentences {
		b.WriteString(theme.Body.Render(sent.Japanese) + "\n")
		b.WriteString(theme.Hint.Render("  "+sent.English) + "\n")
	}
	if note.Mnemonic != "" {
		b.WriteString("\n" + theme.Reading.Render("💡 "+note.Mnemonic))
	}
	return lipgloss.NewStyle().Width(width).Render(b.String())
}

func renderSummary(sum core.Summary) string {
	rows := []string{
		theme.Title.Render("Session complete"),
		"",
		fmt.Sprintf("Cards        %d", sum.Total),
		theme.Learned.Render(fmt.Sprintf("Learned      %d", sum.Learned)),
		theme.NotLearned.Render(fmt.Sprintf("Not learned  %d", sum.NotLearned)),
		"",
		theme.Hint.Render("Press Enter to review again"),
	}
	return lipgloss.JoinVertical(lipgloss.Center, rows...)
}

func renderError(err error) string {
	msg := "Couldn't load cards"
	if err != nil {
		msg = fmt.Sprintf("Couldn't load cards: %v", err)
	}
	return theme.Failure.Render(msg) + "\n\n" + theme.Hint.Render("Press r to retry")
}

func (s *StudyScreen) statusLine() string {
	if s.status == "" {
		return ""
	}
	if s.statusErr {
		return theme.Failure.Render(s.status)
	}
	return theme.Learned.Render(s.status)
}
