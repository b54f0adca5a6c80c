package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run the self-verification harness",
	Long: `Run every consistency check against live state: the balance formula per
member, recompute idempotence, and the backup round trip. All checks run even
when an earlier one fails.`,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	svc, store, _, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	res := svc.Verify()
	for _, c := range res.Checks {
		mark := "✅"
		if !c.Passed {
			mark = "❌"
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", mark, c.Name, strings.Join(c.Details, "; "))
		if c.Error != "" {
			fmt.Fprintf(os.Stdout, "   error: %s\n", c.Error)
		}
	}
	fmt.Fprintf(os.Stdout, "%d passed, %d failed\n", res.Passed, res.Failed)
	if !res.AllPassed {
		return fmt.Errorf("verification failed: %d check(s)", res.Failed)
	}
	return nil
}
