// Package reconcile compares calculated balances against expectations and
// reports signed discrepancies. A discrepancy is a first-class result value
// for human review, never an error — the engine does not "fix" anything.
package reconcile

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/orderhelper/vipledger/internal/domain"
	"github.com/orderhelper/vipledger/internal/ledger"
	"github.com/orderhelper/vipledger/internal/snapshot"
)

// Report is the outcome of validating one member against the ledger.
type Report struct {
	Name             string          `json:"name"`
	Valid            bool            `json:"valid"`
	Expected         decimal.Decimal `json:"expected"`
	Actual           decimal.Decimal `json:"actual"`
	Diff             decimal.Decimal `json:"diff"`
	TransactionCount int             `json:"transactionCount"`
}

// Validate recomputes the member's balance from their ledger records and
// compares it with the expected balance. Equality is exact — balances are
// whole currency units, no epsilon.
func Validate(name string, expected decimal.Decimal, txs []domain.Transaction) Report {
	memberTxs := ledger.ForMember(txs, name)
	actual := ledger.Calculate(memberTxs, nil).Get(name)

	return Report{
		Name:             name,
		Valid:            actual.Equal(expected),
		Expected:         expected,
		Actual:           actual,
		Diff:             actual.Sub(expected),
		TransactionCount: len(memberTxs),
	}
}

// ─── Batch Audit ────────────────────────────────────────────────────────────

// AuditRow is one member's line in a batch audit: top-ups from the ledger,
// spend from the raw order history, and the snapshot balance on file.
type AuditRow struct {
	Name       string          `json:"name"`
	Topup      decimal.Decimal `json:"topup"`
	Spent      decimal.Decimal `json:"spent"`
	Calculated decimal.Decimal `json:"calculated"` // topup − spent
	Recorded   decimal.Decimal `json:"recorded"`   // balance on file
	Diff       decimal.Decimal `json:"diff"`       // calculated − recorded
}

// AuditReport is the result of auditing a full backup document.
type AuditReport struct {
	Rows       []AuditRow      `json:"rows"`
	TotalTopup decimal.Decimal `json:"totalTopup"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}

// Audit cross-checks the ledger against the raw order history, the second
// source of truth. Members audited are the union of names in the snapshot and
// names with at least one top-up. Spend is the sum of due amounts on paid
// order line-items belonging to the member, independent of the ledger.
// Duplicate transaction ids in the dump are applied at most once.
func Audit(doc domain.Backup) AuditReport {
	recorded := snapshot.Parse(doc.VipList)

	// Top-ups per member, first occurrence of each id wins.
	topups := make(domain.Balances)
	guard := ledger.NewGuard()
	for _, tx := range doc.VipTransactions {
		if !guard.Admit(tx.ID) {
			continue
		}
		if tx.Type == domain.TxTopup {
			topups[tx.Name] = topups.Get(tx.Name).Add(tx.Amount)
		}
	}

	members := make(map[string]struct{}, len(recorded)+len(topups))
	for name := range recorded {
		members[name] = struct{}{}
	}
	for name := range topups {
		members[name] = struct{}{}
	}

	spent := make(domain.Balances)
	for _, order := range doc.OrderHistory {
		for _, detail := range order.Details {
			if _, ok := members[detail.Name]; !ok {
				continue
			}
			if !detail.Paid {
				continue
			}
			spent[detail.Name] = spent.Get(detail.Name).Add(detail.Due)
		}
	}

	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)

	report := AuditReport{Rows: make([]AuditRow, 0, len(names))}
	for _, name := range names {
		topup := topups.Get(name)
		spend := spent.Get(name)
		calculated := topup.Sub(spend)
		onFile := recorded.Get(name)

		report.Rows = append(report.Rows, AuditRow{
			Name:       name,
			Topup:      topup,
			Spent:      spend,
			Calculated: calculated,
			Recorded:   onFile,
			Diff:       calculated.Sub(onFile),
		})
		report.TotalTopup = report.TotalTopup.Add(topup)
		report.TotalSpent = report.TotalSpent.Add(spend)
	}
	return report
}
