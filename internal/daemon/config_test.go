package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8642 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8642)
	}
	if !cfg.API.Metrics {
		t.Error("API.Metrics should be true by default")
	}
	if !cfg.VIP.MigrationEnabled {
		t.Error("VIP.MigrationEnabled should be true by default")
	}
	if cfg.VIP.LedgerLimit != 200 {
		t.Errorf("VIP.LedgerLimit = %d, want 200", cfg.VIP.LedgerLimit)
	}
	if cfg.Backup.Branch != "main" {
		t.Errorf("Backup.Branch = %q, want %q", cfg.Backup.Branch, "main")
	}
	if cfg.Backup.Folder != "DB" {
		t.Errorf("Backup.Folder = %q, want %q", cfg.Backup.Folder, "DB")
	}
	if cfg.Backup.TokenEnv != "VIPLEDGER_GITHUB_TOKEN" {
		t.Errorf("Backup.TokenEnv = %q, want %q", cfg.Backup.TokenEnv, "VIPLEDGER_GITHUB_TOKEN")
	}
}

func TestAPIConfigAddr(t *testing.T) {
	a := APIConfig{Host: "0.0.0.0", Port: 9000}
	if got := a.Addr(); got != "0.0.0.0:9000" {
		t.Errorf("Addr() = %q, want %q", got, "0.0.0.0:9000")
	}
}

func TestIntervalDuration(t *testing.T) {
	tests := []struct {
		interval string
		want     time.Duration
	}{
		{"30m", 30 * time.Minute},
		{"1h", time.Hour},
		{"", 30 * time.Minute},        // default
		{"nonsense", 30 * time.Minute}, // default
		{"-5m", 30 * time.Minute},      // default
	}
	for _, tt := range tests {
		b := BackupConfig{Interval: tt.interval}
		if got := b.IntervalDuration(); got != tt.want {
			t.Errorf("IntervalDuration(%q) = %s, want %s", tt.interval, got, tt.want)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig on missing file error = %v", err)
	}
	if cfg.VIP.LedgerLimit != 200 {
		t.Errorf("missing file should yield defaults, got limit %d", cfg.VIP.LedgerLimit)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[api]
port = 9999

[vip]
migration_enabled = false
ledger_limit = 50
confirmed_duplicate_ids = ["tx-dup-1", "tx-dup-2"]

[backup]
repo = "someone/orders"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error = %v", err)
	}
	if cfg.API.Port != 9999 {
		t.Errorf("API.Port = %d, want 9999", cfg.API.Port)
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("unset keys should keep defaults, host = %q", cfg.API.Host)
	}
	if cfg.VIP.MigrationEnabled {
		t.Error("VIP.MigrationEnabled = true, want false")
	}
	if cfg.VIP.LedgerLimit != 50 {
		t.Errorf("VIP.LedgerLimit = %d, want 50", cfg.VIP.LedgerLimit)
	}
	if len(cfg.VIP.ConfirmedDuplicateIDs) != 2 {
		t.Errorf("ConfirmedDuplicateIDs = %v, want 2 ids", cfg.VIP.ConfirmedDuplicateIDs)
	}
	if cfg.Backup.Repo != "someone/orders" {
		t.Errorf("Backup.Repo = %q, want %q", cfg.Backup.Repo, "someone/orders")
	}
}
