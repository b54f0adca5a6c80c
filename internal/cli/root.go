// Package cli wires the cobra commands. Commands are thin: load config, open
// the store, call the service, print.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/orderhelper/vipledger/internal/app/vip"
	"github.com/orderhelper/vipledger/internal/daemon"
	"github.com/orderhelper/vipledger/internal/infra/sqlite"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "vipledger",
	Short: "Prepaid balance ledger for the order-splitting tool",
	Long: `vipledger maintains prepaid member balances derived from an append-only
transaction ledger. Balances are never stored as mutable numbers: they are
recomputed from the ledger, cross-checked against a text snapshot, and every
discrepancy is reported rather than silently fixed.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the TOML config (defaults when the file is absent).
func loadConfig() (daemon.Config, error) {
	return daemon.LoadConfig(configPath)
}

// openService opens the blob store and builds the service around it.
// The caller closes the returned store.
func openService() (*vip.Service, *sqlite.DB, daemon.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, cfg, err
	}
	store, err := sqlite.Open(cfg.Store.Path)
	if err != nil {
		return nil, nil, cfg, err
	}
	svc := vip.New(store, vip.Config{
		MigrationEnabled:    cfg.VIP.MigrationEnabled,
		LedgerLimit:         cfg.VIP.LedgerLimit,
		ConfirmedDuplicates: cfg.VIP.ConfirmedDuplicateIDs,
	})
	return svc, store, cfg, nil
}
