package cmd

import (
	"fmt"
	"strings"

	"github.com/gakuroku/gakuroku/internal/flashcard"
	"github.com/spf13/cobra"
)

var cardsCmd = &cobra.Command{
	Use:   "cards <list-id>",
	Short: "Show the cards on a list, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "list ID")
		if err != nil {
			return err
		}
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		cards, err := e.backend.FetchCards(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("load cards: %w", err)
		}
		if len(cards) == 0 {
			fmt.Println("No cards on this list.")
			return nil
		}

		fmt.Printf("%-6s  %-12s  %-14s  %-3s  %s\n", "ID", "Word", "Reading", "", "Meaning")
		fmt.Println(strings.Repeat("─", 80))
		for _, c := range cards {
			mark := " "
			if c.IsMemorized {
				mark = "✓"
			}
			fmt.Printf("%-6d  %-12s  %-14s  %-3s  %s\n",
				c.ID, c.Word.Headword(), c.Word.Kana, mark, truncate(c.Word.GlossText(), 40))
		}
		return nil
	},
}

var cardsAddCmd = &cobra.Command{
	Use:   "add <list-id> <entry-id>",
	Short: "Add a dictionary entry to a list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "list ID")
		if err != nil {
			return err
		}
		note, _ := cmd.Flags().GetString("note")
		if err := flashcard.ValidateNote(note); err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		c, err := e.backend.AddCard(cmd.Context(), id, args[1], note)
		if err != nil {
			return fmt.Errorf("add card: %w", err)
		}
		fmt.Printf("Added card %d: %s (%s)\n", c.ID, c.Word.Headword(), c.Word.Kana)
		return nil
	},
}

var cardsRmCmd = &cobra.Command{
	Use:     "rm <card-id>",
	Aliases: []string{"remove"},
	Short:   "Remove a card from its list",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "card ID")
		if err != nil {
			return err
		}
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.backend.DeleteCard(cmd.Context(), id); err != nil {
			return fmt.Errorf("remove card: %w", err)
		}
		fmt.Printf("Removed card %d\n", id)
		return nil
	},
}

func init() {
	cardsAddCmd.Flags().StringP("note", "n", "", "Note to attach to the card")

	cardsCmd.AddCommand(cardsAddCmd)
	cardsCmd.AddCommand(cardsRmCmd)
}
