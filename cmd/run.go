package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/backlog/pkg/jira"
	"github.com/harrisonrobin/backlog/pkg/model"
	"github.com/harrisonrobin/backlog/pkg/pipeline"
	"github.com/harrisonrobin/backlog/pkg/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every stage in order",
	Long: `Runs all stages: ` + stageNames() + `.
A stage that fails stops the run; the stores it was writing are restored.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStages(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	for _, s := range pipeline.Stages {
		name := s.Name
		rootCmd.AddCommand(&cobra.Command{
			Use:   name,
			Short: s.Short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runStages(cmd.Context(), name)
			},
		})
	}
}

func stageNames() string {
	var out string
	for i, s := range pipeline.Stages {
		if i > 0 {
			out += ", "
		}
		out += s.Name
	}
	return out
}

func runStages(ctx context.Context, names ...string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	return withLock(func() error {
		journal, err := openJournal()
		if err != nil {
			return err
		}
		if pending := journal.Pending(); len(pending) > 0 {
			return fmt.Errorf("an earlier run did not finish writing %v; run 'backlog restore' first", pending)
		}

		snapshot, err := jira.ReadFiles(cfg.JiraExports)
		if err != nil {
			return err
		}
		log.Printf("loaded %d tracker rows from %v", snapshot.Len(), cfg.JiraExports)

		sheets, err := openSheets(ctx, cfg)
		if err != nil {
			return err
		}

		r := pipeline.New(sheets, journal, cfg, snapshot)
		r.DryRun = flagDryRun
		sums, runErr := r.Run(ctx, names...)
		if err := printSummaries(sums); err != nil {
			return err
		}
		return runErr
	})
}

func printSummaries(sums []model.Summary) error {
	if flagJSON {
		return report.JSON(os.Stdout, sums)
	}
	report.Table(os.Stdout, sums)
	return nil
}
