package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <list-id>",
	Short: "Mark every card on a list as not learned",
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

		ctx := cmd.Context()
		var n int64
		if e.local != nil {
			n, err = e.local.ResetList(ctx, id)
			if err != nil {
				return fmt.Errorf("reset list: %w", err)
			}
		} else {
			// The REST API has no bulk reset; clear each learned card.
			cards, err := e.backend.FetchCards(ctx, id)
			if err != nil {
				return fmt.Errorf("load cards: %w", err)
			}
			for _, c := range cards {
				if !c.IsMemorized {
					continue
				}
				if _, err := e.backend.PersistLearned(ctx, c.ID, false, c.Note); err != nil {
					return fmt.Errorf("reset card %d: %w", c.ID, err)
				}
				n++
			}
		}
		fmt.Printf("Reset %d card(s) on list %d\n", n, id)
		return nil
	},
}
