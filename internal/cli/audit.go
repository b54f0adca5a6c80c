package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orderhelper/vipledger/internal/domain"
	"github.com/orderhelper/vipledger/internal/reconcile"
)

func init() {
	rootCmd.AddCommand(auditCmd)
}

var auditCmd = &cobra.Command{
	Use:   "audit BACKUP_FILE",
	Short: "Cross-check a backup's ledger against its order history",
	Long: `Audit a backup document: total top-ups per member from the ledger, spend
from paid order line-items, and the difference against the balance on file.
Duplicate transaction ids in the dump are applied at most once.`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func runAudit(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	var doc domain.Backup
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode backup: %w", err)
	}

	report := reconcile.Audit(doc)
	if len(report.Rows) == 0 {
		fmt.Fprintln(os.Stdout, "No members to audit.")
		return nil
	}

	fmt.Fprintln(os.Stdout, "--- VIP Balance Audit ---")
	for _, row := range report.Rows {
		fmt.Fprintf(os.Stdout, "%s\n", row.Name)
		fmt.Fprintf(os.Stdout, "  topup:      %sđ\n", row.Topup)
		fmt.Fprintf(os.Stdout, "  spent:      %sđ\n", row.Spent)
		fmt.Fprintf(os.Stdout, "  calculated: %sđ\n", row.Calculated)
		fmt.Fprintf(os.Stdout, "  on file:    %sđ\n", row.Recorded)
		fmt.Fprintf(os.Stdout, "  diff:       %sđ\n", row.Diff)
	}
	fmt.Fprintf(os.Stdout, "total topup %sđ, total spent %sđ across %d member(s)\n",
		report.TotalTopup, report.TotalSpent, len(report.Rows))
	return nil
}
