// Package daemon holds runtime configuration, loaded from
// ~/.vipledger/config.toml (override the directory with VIPLEDGER_HOME).
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full runtime configuration.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	API    APIConfig    `toml:"api"`
	VIP    VIPConfig    `toml:"vip"`
	Backup BackupConfig `toml:"backup"`
}

// StoreConfig locates the blob store.
type StoreConfig struct {
	Path string `toml:"path"`
}

// APIConfig controls the HTTP server.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// Addr returns the host:port the server binds.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// VIPConfig controls the ledger engine.
type VIPConfig struct {
	// MigrationEnabled turns on the normalizer's migration pass.
	MigrationEnabled bool `toml:"migration_enabled"`

	// LedgerLimit bounds the persisted ledger.
	LedgerLimit int `toml:"ledger_limit"`

	// ConfirmedDuplicateIDs lists transaction ids confirmed as duplicate
	// imports, the only records removal may ever touch.
	ConfirmedDuplicateIDs []string `toml:"confirmed_duplicate_ids"`
}

// BackupConfig controls the GitHub backup transport.
type BackupConfig struct {
	Repo     string `toml:"repo"` // owner/name
	Branch   string `toml:"branch"`
	Folder   string `toml:"folder"`
	TokenEnv string `toml:"token_env"` // env var holding the token, never stored
	Interval string `toml:"interval"`  // e.g. "30m"
}

// IntervalDuration parses the backup interval, defaulting to 30 minutes.
func (b BackupConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(b.Interval)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Path: filepath.Join(Home(), "vipledger.db"),
		},
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    8642,
			Metrics: true,
		},
		VIP: VIPConfig{
			MigrationEnabled: true,
			LedgerLimit:      200,
		},
		Backup: BackupConfig{
			Branch:   "main",
			Folder:   "DB",
			TokenEnv: "VIPLEDGER_GITHUB_TOKEN",
			Interval: "30m",
		},
	}
}

// Home returns the configuration directory.
func Home() string {
	if env := os.Getenv("VIPLEDGER_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".vipledger")
}

// ConfigPath returns the default config file location.
func ConfigPath() string {
	return filepath.Join(Home(), "config.toml")
}

// LoadConfig reads the TOML file at path over the defaults. A missing file is
// not an error — defaults apply.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = ConfigPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
