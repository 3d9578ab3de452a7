package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search the dictionary by kanji, kana or English",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyword := strings.Join(args, " ")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		words, err := e.backend.SearchEntries(cmd.Context(), keyword)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		if len(words) == 0 {
			fmt.Printf("No entries match %q.\n", keyword)
			return nil
		}

		fmt.Printf("%-10s  %-12s  %-14s  %s\n", "Entry", "Word", "Reading", "Meaning")
		fmt.Println(strings.Repeat("─", 80))
		for _, w := range words {
			common := ""
			if w.IsCommon {
				common = " ★"
			}
			fmt.Printf("%-10s  %-12s  %-14s  %s%s\n", w.ID, w.Headword(), w.Kana, truncate(w.GlossText(), 38), common)
		}
		return nil
	},
}
