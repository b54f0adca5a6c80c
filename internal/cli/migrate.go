package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Normalize the stored ledger in place",
	Long: `Rewrite the stored ledger in canonical form: fill missing ids, timestamps
and types, drop unreadable records, truncate to the configured bound, and
remove any transactions on the confirmed-duplicate list. Then rebuild the
snapshot from the result.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	svc, store, _, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := svc.Migrate()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Ledger migrated: %d canonical transaction(s).\n", n)

	removed, err := svc.RemoveConfirmedDuplicates()
	if err != nil {
		return err
	}
	if removed > 0 {
		fmt.Fprintf(os.Stdout, "Removed %d confirmed duplicate(s).\n", removed)
	}

	return svc.Recompute()
}
