package cli

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/orderhelper/vipledger/internal/api"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long:  `Serve balances, reconciliation and self-verification over HTTP.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, store, cfg, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	server := api.NewServer(svc)
	if cfg.API.Metrics {
		server.EnableMetrics()
	}

	addr := cfg.API.Addr()
	fmt.Fprintf(os.Stdout, "vipledger listening on http://%s\n", addr)
	log.Printf("[serve] store=%s migration=%v", cfg.Store.Path, cfg.VIP.MigrationEnabled)
	return http.ListenAndServe(addr, server.Handler())
}
