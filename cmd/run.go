package cmd

import (
	"fmt"
	"os"

	"github.com/gakuroku/gakuroku/internal/app"
	"github.com/gakuroku/gakuroku/internal/explain"
	"github.com/gakuroku/gakuroku/internal/flashcard"
	"github.com/gakuroku/gakuroku/internal/llm"
	"github.com/gakuroku/gakuroku/internal/screens/home"
	studyscreen "github.com/gakuroku/gakuroku/internal/screens/study"
	"github.com/spf13/cobra"
)

// runApp resolves the backend, builds dependencies, and launches the TUI.
// A non-zero listID opens that list's study screen directly.
func runApp(cmd *cobra.Command, listID int64) error {
	ctx := cmd.Context()
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	deps := home.Deps{
		Library: e.backend,
		Cards:   e.backend,
		Stats:   e.backend,
	}

	if lc, ok := e.cfg.LLM(); ok {
		var rec llm.Recorder
		if e.local != nil {
			rec = e.local.EventRepo()
		}
		provider, err := llm.NewProvider(ctx, lc, rec)
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "Study notes will be unavailable.")
		} else {
			deps.Explain = explain.NewService(provider, explain.DefaultConfig())
		}
	}

	opts := app.Options{Deps: deps, LogFile: e.cfg.Log.File}
	if listID != 0 {
		l, err := findList(cmd, e.backend, listID)
		if err != nil {
			return err
		}
		opts.Start = studyscreen.New(*l, deps.Cards, deps.Explain)
	}
	return app.Run(opts)
}

func findList(cmd *cobra.Command, b backend, id int64) (*flashcard.List, error) {
	lists, err := b.Lists(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("load lists: %w", err)
	}
	for i := range lists {
		if lists[i].ID == id {
			return &lists[i], nil
		}
	}
	return nil, fmt.Errorf("list %d: %w", id, flashcard.ErrNotFound)
}
