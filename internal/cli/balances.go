package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/orderhelper/vipledger/internal/snapshot"
)

func init() {
	rootCmd.AddCommand(balancesCmd)
	rootCmd.AddCommand(recomputeCmd)
	rootCmd.AddCommand(reconcileCmd)
}

// ─── balances ───────────────────────────────────────────────────────────────

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Show balances derived from the ledger",
	Long:  `Recalculate every member's balance from the transaction ledger and print them.`,
	RunE:  runBalances,
}

func runBalances(cmd *cobra.Command, args []string) error {
	svc, store, _, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	balances, err := svc.Balances()
	if err != nil {
		return err
	}
	if len(balances) == 0 {
		fmt.Fprintln(os.Stdout, "Ledger is empty.")
		return nil
	}

	// The codec already renders names in display order.
	fmt.Fprintln(os.Stdout, snapshot.Serialize(balances))
	return nil
}

// ─── recompute ──────────────────────────────────────────────────────────────

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Rebuild the snapshot from the ledger",
	Long:  `Derive balances from the ledger and persist them as the new snapshot text. The ledger itself is never modified.`,
	RunE:  runRecompute,
}

func runRecompute(cmd *cobra.Command, args []string) error {
	svc, store, _, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := svc.Recompute(); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "Snapshot recomputed.")
	return nil
}

// ─── reconcile ──────────────────────────────────────────────────────────────

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare snapshot balances against the ledger",
	Long:  `Validate every member in the stored snapshot against a fresh ledger calculation and report signed differences.`,
	RunE:  runReconcile,
}

func runReconcile(cmd *cobra.Command, args []string) error {
	svc, store, _, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	reports, err := svc.ReconcileSnapshot()
	if err != nil {
		return err
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Name < reports[j].Name })
	invalid := 0
	for _, r := range reports {
		mark := "✅"
		if !r.Valid {
			mark = "❌"
			invalid++
		}
		fmt.Fprintf(os.Stdout, "%s %s: expected %sđ, actual %sđ, diff %sđ (%d transactions)\n",
			mark, r.Name, r.Expected, r.Actual, r.Diff, r.TransactionCount)
	}
	if invalid > 0 {
		return fmt.Errorf("%d member(s) out of balance", invalid)
	}
	fmt.Fprintf(os.Stdout, "All %d member(s) reconciled.\n", len(reports))
	return nil
}
