package cmd

import (
	"fmt"

	"github.com/gakuroku/gakuroku/internal/importer"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import dictionary entries from JMdict JSON, .xlsx or .csv",
	Long: `Import dictionary entries into the local database.

Supported formats, chosen by extension:
  .json   JMdict-simplified (jmdict-eng)
  .xlsx   workbook rows: entry id, kanji, kana, glosses, parts of speech, note
  .csv    the same columns as a workbook

With --list every imported entry is also added to that list.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := importer.DefaultConfig()
		cfg.ListID, _ = cmd.Flags().GetInt64("list")
		cfg.SheetName, _ = cmd.Flags().GetString("sheet")
		if n, _ := cmd.Flags().GetInt("batch"); n > 0 {
			cfg.BatchSize = n
		}

		_, st, err := openLocal(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if cfg.ListID != 0 {
			if _, err := st.List(cmd.Context(), cfg.ListID); err != nil {
				return fmt.Errorf("list %d: %w", cfg.ListID, err)
			}
		}

		res, err := importer.New(st, st, cfg).ImportFile(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}

		fmt.Printf("Processed %d entries: %d new, %d updated", res.TotalProcessed, res.Created, res.Updated)
		if cfg.ListID != 0 {
			fmt.Printf(", %d added to list %d", res.CardsAdded, cfg.ListID)
		}
		fmt.Println()
		if res.Skipped > 0 {
			fmt.Printf("Skipped %d:\n", res.Skipped)
			for _, e := range res.Errors {
				fmt.Println("  " + e)
			}
		}
		return nil
	},
}

func init() {
	importCmd.Flags().Int64P("list", "l", 0, "Add imported entries to this list")
	importCmd.Flags().String("sheet", "", "Workbook sheet to read (default: first sheet)")
	importCmd.Flags().Int("batch", 0, "Entries per database transaction")
}
