// Package cmd implements the backlog CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/harrisonrobin/backlog/pkg/backup"
	"github.com/harrisonrobin/backlog/pkg/config"
	"github.com/harrisonrobin/backlog/pkg/google"
	"github.com/harrisonrobin/backlog/pkg/report"
)

const lockFile = "backlog.lock"

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagConfig  string
	flagDryRun  bool
	flagNoColor bool
	flagJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "backlog",
	Short: "Reconcile Jira exports with the task spreadsheets",
	Long: `backlog appends new Jira tasks to the task database sheet, keeps their
statuses and SLA cells current, mirrors tasks onto the triage board and
moves finished ones to the archive.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			report.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ~/.config/backlog/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "compute and report without writing any sheet")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "print stage summaries as JSON")
	rootCmd.PersistentFlags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "dryrun", "dry_run":
			name = "dry-run"
		case "nocolor", "no_color":
			name = "no-color"
		}
		return pflag.NormalizedName(name)
	})
}

// Execute runs the root command. An interrupt cancels the running stage,
// whose commit then restores the sheets it had touched.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// configPath returns the --config value or the default location.
func configPath() (string, error) {
	if flagConfig != "" {
		return flagConfig, nil
	}
	return config.GetConfigPath()
}

// readConfig loads the configuration without checking it is complete.
func readConfig() (*config.Config, string, error) {
	path, err := configPath()
	if err != nil {
		return nil, "", fmt.Errorf("could not find path to configuration file: %w", err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, path, nil
}

func loadConfig() (*config.Config, error) {
	cfg, path, err := readConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// stateDir holds the lock file and the backup journal, next to the config file.
func stateDir() (string, error) {
	path, err := configPath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// withLock runs fn while holding the run lock, so two runs never rewrite
// the same sheets at once.
func withLock(fn func() error) error {
	dir, err := stateDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another backlog run is in progress")
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}

func openJournal() (*backup.Journal, error) {
	dir, err := stateDir()
	if err != nil {
		return nil, err
	}
	return backup.NewJournal(dir)
}

func openSheets(ctx context.Context, cfg *config.Config) (*google.SheetsClient, error) {
	client, err := google.NewClient(ctx, cfg.Credentials, cfg.Stores)
	if err != nil {
		return nil, fmt.Errorf("creating Google Sheets client: %w", err)
	}
	return client, nil
}
