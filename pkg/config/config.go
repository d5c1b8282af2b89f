package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/harrisonrobin/backlog/pkg/categorize"
)

const (
	xdgAppName = "backlog"
	configFile = "config.yaml"
)

// Store ids used by the pipeline.
const (
	StoreDatabase = "database"
	StoreBoard    = "board"
	StoreArchive  = "archive"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// SheetRef locates one sheet (tab) inside a spreadsheet.
type SheetRef struct {
	SpreadsheetID string `yaml:"spreadsheet_id"`
	Sheet         string `yaml:"sheet"`
}

// BoardConfig controls which tasks the triage board holds.
type BoardConfig struct {
	Capacity         int      `yaml:"capacity"`
	SyncTeam         string   `yaml:"sync_team"`
	ExcludedTeam     string   `yaml:"excluded_team"`
	ExcludedPrefixes []string `yaml:"excluded_prefixes,omitempty"`
}

type Config struct {
	JiraExports []string                `yaml:"jira_exports"`
	JiraBaseURL string                  `yaml:"jira_base_url"`
	Credentials string                  `yaml:"credentials"`
	Stores      map[string]SheetRef     `yaml:"stores"`
	Clients     map[string]string       `yaml:"clients"`
	Prefixes    []categorize.PrefixRule `yaml:"prefixes"`
	Categories  []string                `yaml:"categories"`
	Board       BoardConfig             `yaml:"board"`
	// LegacyMatch finds board rows by substring of the hyperlink cell,
	// for boards written before the ticket-id column existed.
	LegacyMatch bool `yaml:"legacy_match,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if len(c.JiraExports) == 0 {
		c.JiraExports = []string{"jira.csv"}
	}
	if c.Credentials == "" {
		c.Credentials = "credentials.json"
	}
	if c.Stores == nil {
		c.Stores = make(map[string]SheetRef)
	}
	if c.Clients == nil {
		c.Clients = map[string]string{}
	}
	if len(c.Prefixes) == 0 {
		c.Prefixes = []categorize.PrefixRule{{Prefix: "PLUG-", Category: "Plugin"}}
	}
	if len(c.Categories) == 0 {
		c.Categories = []string{"Backend", "Frontend", "Plugin"}
	}
	if c.Board.Capacity <= 0 {
		c.Board.Capacity = 25
	}
	if c.Board.SyncTeam == "" {
		c.Board.SyncTeam = "Plugin"
	}
	if c.Board.ExcludedTeam == "" {
		c.Board.ExcludedTeam = "Plugin"
	}
}

// Validate checks that every store the pipeline writes is configured.
func (c *Config) Validate() error {
	for _, id := range []string{StoreDatabase, StoreBoard, StoreArchive} {
		ref, ok := c.Stores[id]
		if !ok || ref.SpreadsheetID == "" || ref.Sheet == "" {
			return fmt.Errorf("%w: store '%s' needs spreadsheet_id and sheet", ErrInvalid, id)
		}
	}
	if c.JiraBaseURL == "" {
		return fmt.Errorf("%w: jira_base_url is empty", ErrInvalid)
	}
	return nil
}

// Dir returns the configuration directory, ~/.config/backlog.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the configuration from the default path.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration at path. A missing file yields the defaults.
// Relative export and credential paths are resolved against the file's directory.
func LoadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.applyDefaults()

	dir := filepath.Dir(path)
	for i, p := range cfg.JiraExports {
		cfg.JiraExports[i] = resolve(dir, p)
	}
	cfg.Credentials = resolve(dir, cfg.Credentials)
	return &cfg, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Save writes the configuration to the default path.
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

func SaveFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return err
	}
	return encoder.Close()
}
