// Package verify is the self-verification harness: property checks run
// against live data rather than fixtures. Every run executes all checks —
// a failure in one never aborts the others — and collaborator errors are
// attributed to the specific check that hit them.
package verify

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orderhelper/vipledger/internal/domain"
	"github.com/orderhelper/vipledger/internal/snapshot"
)

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Name    string   `json:"name"`
	Passed  bool     `json:"passed"`
	Details []string `json:"details,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Results aggregates a full harness run.
type Results struct {
	Timestamp time.Time     `json:"timestamp"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	AllPassed bool          `json:"allPassed"`
	Checks    []CheckResult `json:"checks"`
}

// Harness wires the checks to live state. LoadLedger is the canonical read
// path and Recompute is the external rebuild entry point; both may touch
// persistence and may therefore fail.
type Harness struct {
	Store      domain.Store
	LoadLedger func() ([]domain.Transaction, error)
	Recompute  func() error
}

// Run executes all checks and returns the aggregate outcome.
func (h *Harness) Run() Results {
	res := Results{Timestamp: time.Now().UTC()}

	for _, check := range []func() CheckResult{
		h.checkLedgerFormula,
		h.checkRecomputeIdempotence,
		h.checkBackupRoundTrip,
	} {
		c := check()
		res.Checks = append(res.Checks, c)
		if c.Passed {
			res.Passed++
		} else {
			res.Failed++
		}
	}

	res.AllPassed = res.Failed == 0
	return res
}

// ─── Check 1: Ledger Formula ────────────────────────────────────────────────

// checkLedgerFormula recomputes every snapshot member's balance as
// opening + topup − |cashout| − |order| folded in ledger order and asserts
// equality with the balance on file.
func (h *Harness) checkLedgerFormula() CheckResult {
	c := CheckResult{Name: "ledger formula"}

	text, _, err := h.Store.LoadSnapshot()
	if err != nil && !errors.Is(err, domain.ErrSnapshotMissing) {
		c.Error = err.Error()
		return c
	}
	expected := snapshot.Parse(text)
	if len(expected) == 0 {
		c.Passed = true
		c.Details = append(c.Details, "no members in snapshot (check skipped)")
		return c
	}

	txs, err := h.LoadLedger()
	if err != nil {
		c.Error = err.Error()
		return c
	}

	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)

	c.Passed = true
	for _, name := range names {
		var calculated decimal.Decimal
		for _, tx := range txs {
			if tx.Name != name {
				continue
			}
			switch tx.Type {
			case domain.TxOpening, domain.TxTopup:
				calculated = calculated.Add(tx.Amount)
			case domain.TxCashout, domain.TxOrder:
				calculated = calculated.Sub(tx.Amount.Abs())
			}
		}

		want := expected.Get(name)
		diff := calculated.Sub(want)
		if diff.IsZero() {
			c.Details = append(c.Details, fmt.Sprintf("%s: expected %sđ, calculated %sđ", name, want, calculated))
		} else {
			c.Passed = false
			c.Details = append(c.Details, fmt.Sprintf("%s: expected %sđ, calculated %sđ, diff %sđ", name, want, calculated, diff))
		}
	}
	c.Details = append(c.Details, fmt.Sprintf("checked %d members", len(names)))
	return c
}

// ─── Check 2: Recompute Idempotence ─────────────────────────────────────────

// checkRecomputeIdempotence snapshots the serialized ledger and snapshot text,
// invokes the rebuild entry point, and asserts byte-for-byte equality of both
// plus an unchanged transaction count. Recomputation must never duplicate or
// mutate persisted state.
func (h *Harness) checkRecomputeIdempotence() CheckResult {
	c := CheckResult{Name: "recompute idempotence"}

	ledgerBefore, err := h.Store.LedgerBlob()
	if err != nil {
		c.Error = err.Error()
		return c
	}
	snapBefore, _, err := h.Store.LoadSnapshot()
	if err != nil && !errors.Is(err, domain.ErrSnapshotMissing) {
		c.Error = err.Error()
		return c
	}
	txsBefore, err := h.LoadLedger()
	if err != nil {
		c.Error = err.Error()
		return c
	}

	if err := h.Recompute(); err != nil {
		c.Error = fmt.Sprintf("recompute: %v", err)
		return c
	}

	ledgerAfter, err := h.Store.LedgerBlob()
	if err != nil {
		c.Error = err.Error()
		return c
	}
	snapAfter, _, err := h.Store.LoadSnapshot()
	if err != nil && !errors.Is(err, domain.ErrSnapshotMissing) {
		c.Error = err.Error()
		return c
	}
	txsAfter, err := h.LoadLedger()
	if err != nil {
		c.Error = err.Error()
		return c
	}

	ledgerUnchanged := ledgerBefore == ledgerAfter
	snapUnchanged := snapBefore == snapAfter
	countUnchanged := len(txsBefore) == len(txsAfter)

	c.Details = append(c.Details,
		fmt.Sprintf("ledger unchanged: %v", ledgerUnchanged),
		fmt.Sprintf("snapshot unchanged: %v", snapUnchanged),
		fmt.Sprintf("transaction count: %d → %d", len(txsBefore), len(txsAfter)),
	)
	c.Passed = ledgerUnchanged && snapUnchanged && countUnchanged
	return c
}

// ─── Check 3: Backup Round Trip ─────────────────────────────────────────────

// checkBackupRoundTrip serializes current state to a backup document,
// deserializes it back and asserts structural equality of all three pieces.
// Guards against lossy encoding (currency marks, signed amounts) across the
// backup boundary.
func (h *Harness) checkBackupRoundTrip() CheckResult {
	c := CheckResult{Name: "backup round trip"}

	orders, err := h.Store.LoadOrderHistory()
	if err != nil {
		c.Error = err.Error()
		return c
	}
	txs, err := h.LoadLedger()
	if err != nil {
		c.Error = err.Error()
		return c
	}
	vipList, _, err := h.Store.LoadSnapshot()
	if err != nil && !errors.Is(err, domain.ErrSnapshotMissing) {
		c.Error = err.Error()
		return c
	}

	doc := domain.Backup{
		OrderHistory:    orders,
		VipTransactions: txs,
		VipList:         vipList,
		Timestamp:       time.Now().UTC(),
		Version:         domain.BackupVersion,
	}
	c.Details = append(c.Details, fmt.Sprintf("backup holds %d orders, %d transactions", len(orders), len(txs)))

	encoded, err := json.Marshal(doc)
	if err != nil {
		c.Error = fmt.Sprintf("encode: %v", err)
		return c
	}
	var restored domain.Backup
	if err := json.Unmarshal(encoded, &restored); err != nil {
		c.Error = fmt.Sprintf("decode: %v", err)
		return c
	}

	ordersMatch := jsonEqual(doc.OrderHistory, restored.OrderHistory)
	txsMatch := jsonEqual(doc.VipTransactions, restored.VipTransactions)
	listMatch := doc.VipList == restored.VipList

	c.Details = append(c.Details,
		fmt.Sprintf("order history match: %v", ordersMatch),
		fmt.Sprintf("transactions match: %v", txsMatch),
		fmt.Sprintf("snapshot text match: %v", listMatch),
	)
	c.Passed = ordersMatch && txsMatch && listMatch
	return c
}

// jsonEqual compares two values by their canonical JSON encoding.
func jsonEqual(a, b any) bool {
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(aj) == string(bj)
}
