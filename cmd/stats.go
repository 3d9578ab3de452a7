package cmd

import (
	"fmt"

	statsscreen "github.com/gakuroku/gakuroku/internal/screens/stats"
	"github.com/gakuroku/gakuroku/internal/stats"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show study statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		weeks, _ := cmd.Flags().GetInt("weeks")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ov, err := e.backend.Overview(cmd.Context())
		if err != nil {
			return fmt.Errorf("load overview: %w", err)
		}
		days, err := e.backend.Heatmap(cmd.Context())
		if err != nil {
			return fmt.Errorf("load heatmap: %w", err)
		}

		fmt.Printf("Reviews         %d\n", ov.TotalReviews)
		fmt.Printf("Words learned   %d\n", ov.MasteredWords)
		fmt.Printf("Current streak  %s\n", plural(ov.CurrentStreak, "day"))
		fmt.Printf("Longest streak  %s\n", plural(ov.LongestStreak, "day"))
		if next := stats.NextMilestone(ov.CurrentStreak); next > ov.CurrentStreak {
			fmt.Printf("Next milestone  %d days\n", next)
		}
		if weeks > 0 {
			fmt.Println()
			fmt.Println(statsscreen.RenderHeatmap(days, weeks))
		}
		return nil
	},
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func init() {
	statsCmd.Flags().IntP("weeks", "w", 26, "Weeks of activity to draw (0 hides the heatmap)")
}
