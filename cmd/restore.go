package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore sheets left half-written by an interrupted run",
	Long: `Writes back the content every sheet had before the last unfinished
commit, as recorded in the backup journal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return withLock(func() error {
			journal, err := openJournal()
			if err != nil {
				return err
			}
			pending := journal.Pending()
			if len(pending) == 0 {
				fmt.Println("Nothing to restore.")
				return nil
			}
			if flagDryRun {
				fmt.Printf("Would restore %v\n", pending)
				return nil
			}

			sheets, err := openSheets(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			restored, err := journal.Restore(cmd.Context(), sheets)
			for _, id := range restored {
				fmt.Printf("Restored %s\n", id)
			}
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
