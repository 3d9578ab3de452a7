package home

import (
	"context"
	"fmt"
	"log"

	tea "charm.land/bubbletea/v2"

	"github.com/gakuroku/gakuroku/internal/explain"
	"github.com/gakuroku/gakuroku/internal/flashcard"
	"github.com/gakuroku/gakuroku/internal/router"
	"github.com/gakuroku/gakuroku/internal/screen"
	statsscreen "github.com/gakuroku/gakuroku/internal/screens/stats"
	studyscreen "github.com/gakuroku/gakuroku/internal/screens/study"
	"github.com/gakuroku/gakuroku/internal/stats"
	"github.com/gakuroku/gakuroku/internal/study"
	"github.com/gakuroku/gakuroku/internal/ui/components"
	"github.com/gakuroku/gakuroku/internal/ui/layout"
)

// Library lists the vocabulary lists available for study.
type Library interface {
	Lists(ctx context.Context) ([]flashcard.List, error)
}

// Deps are the services the home screen hands to the screens it opens.
// Stats and Explain may be nil.
type Deps struct {
	Library Library
	Cards   study.CardStore
	Stats   stats.Provider
	Explain *explain.Service
}

type loadedMsg struct {
	Lists    []flashcard.List
	Overview *stats.Overview
	Err      error
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	deps     Deps
	lists    []flashcard.List
	overview *stats.Overview
	menu     components.Menu
	err      error
	loading  bool
}

var (
	_ screen.Screen          = (*HomeScreen)(nil)
	_ screen.KeyHintProvider = (*HomeScreen)(nil)
	_ screen.Resumer         = (*HomeScreen)(nil)
)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	h := &HomeScreen{deps: deps, loading: true}
	h.menu = components.NewMenu(h.items())
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

// Resume reloads list counts and statistics after returning from a study
// session.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) Title() string {
	return "Lists"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Study"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(loadedMsg); ok {
		first := h.loading
		h.loading = false
		h.err = msg.Err
		if msg.Err != nil {
			log.Printf("home: %v", msg.Err)
		} else {
			h.lists = msg.Lists
			h.overview = msg.Overview
		}
		selected := h.menu.Selected
		h.menu = components.NewMenu(h.items())
		if !first && selected < len(h.menu.Items) && !h.menu.Items[selected].Disabled {
			h.menu.Selected = selected
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) load() tea.Cmd {
	deps := h.deps
	return func() tea.Msg {
		ctx := context.Background()
		lists, err := deps.Library.Lists(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		msg := loadedMsg{Lists: lists}
		if deps.Stats != nil {
			// Statistics are decoration here; a failure only hides them.
			if ov, err := deps.Stats.Overview(ctx); err == nil {
				msg.Overview = ov
			} else {
				log.Printf("home: overview: %v", err)
			}
		}
		return msg
	}
}

func (h *HomeScreen) items() []components.MenuItem {
	items := make([]components.MenuItem, 0, len(h.lists)+2)
	for _, l := range h.lists {
		items = append(items, components.MenuItem{
			Label:    l.Name,
			Detail:   cardCount(l.Count),
			Disabled: l.Count == 0,
			Action: func() tea.Cmd {
				return router.Push(studyscreen.New(l, h.deps.Cards, h.deps.Explain))
			},
		})
	}
	items = append(items, components.MenuItem{
		Label:    "Statistics",
		Disabled: h.deps.Stats == nil,
		Action: func() tea.Cmd {
			return router.Push(statsscreen.New(h.deps.Stats))
		},
	})
	items = append(items, components.MenuItem{
		Label:  "Quit",
		Action: func() tea.Cmd { return tea.Quit },
	})
	return items
}

func cardCount(n int) string {
	if n == 1 {
		return "1 card"
	}
	return fmt.Sprintf("%d cards", n)
}
