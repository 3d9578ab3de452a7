package cmd

import (
	"github.com/spf13/cobra"
)

var studyCmd = &cobra.Command{
	Use:   "study <list-id>",
	Short: "Study one list without going through the home screen",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "list ID")
		if err != nil {
			return err
		}
		return runApp(cmd, id)
	},
}
