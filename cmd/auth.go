package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/backlog/pkg/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with Google Sheets",
	Long: `Removes any cached token and runs the OAuth flow again. Service account
credentials need no browser step and only have their access checked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := readConfig()
		if err != nil {
			return err
		}
		if err := auth.ResetToken(); err != nil {
			return err
		}
		if _, err := auth.GetSheetsService(cmd.Context(), cfg.Credentials); err != nil {
			return err
		}
		path, _ := auth.TokenPath()
		log.Printf("Authentication successful! Token saved to %s", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}
