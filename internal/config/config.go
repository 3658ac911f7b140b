package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultRetrieveCommand fetches one file; $1 is the object id, $2 the destination.
const DefaultRetrieveCommand = `mtp-getfile "$1" "$2"`

// HistoryConfig represents fetch journal configuration
type HistoryConfig struct {
	// Enabled records every fetch outcome
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database (empty = under the home directory)
	DBPath string `yaml:"db_path"`
}

// Config represents mtpget configuration options
type Config struct {
	// SnapshotPath is the captured device listing
	SnapshotPath string `yaml:"snapshot_path"`

	// CaptureCommand is the command the user runs to produce the snapshot
	CaptureCommand string `yaml:"capture_command"`

	// RetrieveCommand is a shell command template run once per fetched record
	RetrieveCommand string `yaml:"retrieve_command"`

	// DestinationDir is where fetched files are written
	DestinationDir string `yaml:"destination_dir"`

	// Overwrite replaces existing local files instead of skipping them
	Overwrite bool `yaml:"overwrite"`

	// FetchTimeout bounds a single retrieval (0 = no limit)
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// History contains fetch journal configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		SnapshotPath:    "mtp-files.txt",
		CaptureCommand:  "mtp-files",
		RetrieveCommand: DefaultRetrieveCommand,
		DestinationDir:  ".",
		Overwrite:       false,
		FetchTimeout:    10 * time.Minute,
		LogLevel:        "info",
		History: HistoryConfig{
			Enabled: true,
			DBPath:  "",
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations are strings in YAML
	type yamlConfig struct {
		SnapshotPath    string        `yaml:"snapshot_path"`
		CaptureCommand  string        `yaml:"capture_command"`
		RetrieveCommand string        `yaml:"retrieve_command"`
		DestinationDir  string        `yaml:"destination_dir"`
		Overwrite       bool          `yaml:"overwrite"`
		FetchTimeout    string        `yaml:"fetch_timeout"`
		LogLevel        string        `yaml:"log_level"`
		History         HistoryConfig `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.SnapshotPath != "" {
		cfg.SnapshotPath = yamlCfg.SnapshotPath
	}
	if yamlCfg.CaptureCommand != "" {
		cfg.CaptureCommand = yamlCfg.CaptureCommand
	}
	if yamlCfg.RetrieveCommand != "" {
		cfg.RetrieveCommand = yamlCfg.RetrieveCommand
	}
	if yamlCfg.DestinationDir != "" {
		cfg.DestinationDir = yamlCfg.DestinationDir
	}
	if yamlCfg.Overwrite {
		cfg.Overwrite = true
	}
	if yamlCfg.FetchTimeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.FetchTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid fetch_timeout format %q: %w", yamlCfg.FetchTimeout, err)
		}
		cfg.FetchTimeout = timeout
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = normalizeLogLevel(yamlCfg.LogLevel)
	}

	// history.enabled defaults to true, so only an explicit key may turn it off
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if historySection, ok := rawMap["history"].(map[string]interface{}); ok {
			if _, exists := historySection["enabled"]; exists {
				cfg.History.Enabled = yamlCfg.History.Enabled
			}
			if _, exists := historySection["db_path"]; exists {
				cfg.History.DBPath = yamlCfg.History.DBPath
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromHome loads configuration from config.yaml in the mtpget home directory
func LoadConfigFromHome() (*Config, error) {
	home, err := GetHome()
	if err != nil {
		return nil, err
	}
	return LoadConfig(filepath.Join(home, "config.yaml"))
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(snapshotPath *string, destinationDir *string, overwrite *bool, logLevel *string) {
	if snapshotPath != nil {
		c.SnapshotPath = *snapshotPath
	}
	if destinationDir != nil {
		c.DestinationDir = *destinationDir
	}
	if overwrite != nil {
		c.Overwrite = *overwrite
	}
	if logLevel != nil {
		c.LogLevel = normalizeLogLevel(*logLevel)
	}
}

// normalizeLogLevel makes log levels case-insensitive.
func normalizeLogLevel(level string) string {
	return strings.ToLower(strings.TrimSpace(level))
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SnapshotPath) == "" {
		return fmt.Errorf("snapshot_path cannot be empty")
	}
	if strings.TrimSpace(c.RetrieveCommand) == "" {
		return fmt.Errorf("retrieve_command cannot be empty")
	}
	if c.DestinationDir == "" {
		return fmt.Errorf("destination_dir cannot be empty")
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout must be >= 0, got %v", c.FetchTimeout)
	}

	return nil
}

// HistoryDBPath returns the configured history database path, falling back
// to history.db under the home directory.
func (c *Config) HistoryDBPath() (string, error) {
	if c.History.DBPath != "" {
		return c.History.DBPath, nil
	}
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history.db"), nil
}
