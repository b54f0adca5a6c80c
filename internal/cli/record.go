package cli

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/orderhelper/vipledger/internal/app/vip"
	"github.com/orderhelper/vipledger/internal/domain"
)

func init() {
	rootCmd.AddCommand(topupCmd)
	rootCmd.AddCommand(cashoutCmd)
}

var topupCmd = &cobra.Command{
	Use:   "topup NAME AMOUNT",
	Short: "Record a top-up for a member",
	Args:  cobra.ExactArgs(2),
	RunE:  runTopup,
}

func runTopup(cmd *cobra.Command, args []string) error {
	return record(args[0], args[1], domain.TxTopup)
}

var cashoutCmd = &cobra.Command{
	Use:   "cashout NAME AMOUNT",
	Short: "Record a cash-out for a member",
	Long:  `Record a cash-out. AMOUNT is given as a positive number and stored negative.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runCashout,
}

func runCashout(cmd *cobra.Command, args []string) error {
	return record(args[0], args[1], domain.TxCashout)
}

func record(name, amountArg string, typ domain.TxType) error {
	amount, err := decimal.NewFromString(amountArg)
	if err != nil {
		return fmt.Errorf("amount %q: %w", amountArg, domain.ErrBadAmount)
	}
	// The ledger convention: debits are stored signed.
	if typ == domain.TxCashout && amount.Sign() > 0 {
		amount = amount.Neg()
	}

	svc, store, _, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	tx, err := svc.Record(vip.RecordParams{Name: name, Amount: amount, Type: typ})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Recorded %s %sđ for %s (id %s)\n", tx.Type, tx.Amount, tx.Name, tx.ID)

	// Keep the snapshot in step with the ledger.
	return svc.Recompute()
}
