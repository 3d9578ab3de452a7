package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listsCmd = &cobra.Command{
	Use:     "lists",
	Aliases: []string{"ls"},
	Short:   "Show vocabulary lists",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		lists, err := e.backend.Lists(cmd.Context())
		if err != nil {
			return fmt.Errorf("load lists: %w", err)
		}
		if len(lists) == 0 {
			fmt.Println("No lists yet. Create one with: gakuroku lists create <name>")
			return nil
		}

		fmt.Printf("%-5s  %-32s  %6s  %s\n", "ID", "Name", "Cards", "Description")
		fmt.Println(strings.Repeat("─", 72))
		for _, l := range lists {
			fmt.Printf("%-5d  %-32s  %6d  %s\n", l.ID, truncate(l.Name, 32), l.Count, l.Description)
		}
		return nil
	},
}

var listsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		l, err := e.backend.CreateList(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("create list: %w", err)
		}
		fmt.Printf("Created list %d: %s\n", l.ID, l.Name)
		return nil
	},
}

var listsRenameCmd = &cobra.Command{
	Use:   "rename <list-id> <name>",
	Short: "Rename a list or change its description",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "list ID")
		if err != nil {
			return err
		}
		desc, _ := cmd.Flags().GetString("description")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		l, err := e.backend.UpdateList(cmd.Context(), id, args[1], desc)
		if err != nil {
			return fmt.Errorf("update list: %w", err)
		}
		fmt.Printf("Updated list %d: %s\n", l.ID, l.Name)
		return nil
	},
}

var listsDeleteCmd = &cobra.Command{
	Use:   "delete <list-id>",
	Short: "Delete a list and all of its cards",
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

		if err := e.backend.DeleteList(cmd.Context(), id); err != nil {
			return fmt.Errorf("delete list: %w", err)
		}
		fmt.Printf("Deleted list %d\n", id)
		return nil
	},
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func init() {
	listsRenameCmd.Flags().StringP("description", "d", "", "List description")

	listsCmd.AddCommand(listsCreateCmd)
	listsCmd.AddCommand(listsRenameCmd)
	listsCmd.AddCommand(listsDeleteCmd)
}
