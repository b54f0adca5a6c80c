package ledger

import (
	"strings"

	"github.com/orderhelper/vipledger/internal/domain"
)

// Calculate folds an ordered sequence of canonical transactions into a
// balance per member, starting from a copy of initial (nil is fine; unknown
// members implicitly start at zero).
//
// The function is total: orphan records, blank names, unrecognized types and
// cash-paid order lines are ignored, never an error. Amounts are applied by
// plain addition — producers supply cashout/order amounts already negative,
// and the fold does not re-sign them. The result is always a fresh map;
// initial is never mutated.
func Calculate(txs []domain.Transaction, initial domain.Balances) domain.Balances {
	balances := initial.Clone()

	for _, tx := range txs {
		if !tx.CountsTowardBalance() {
			continue
		}
		name := strings.TrimSpace(tx.Name)
		balances[name] = balances.Get(name).Add(tx.Amount)
	}

	return balances
}

// ForMember filters the ledger to records matching the given name.
func ForMember(txs []domain.Transaction, name string) []domain.Transaction {
	var out []domain.Transaction
	for _, tx := range txs {
		if tx.Name == name {
			out = append(out, tx)
		}
	}
	return out
}

// OrdersForMember returns the member's order-type records, excluding ids on
// the confirmed-duplicate list.
func OrdersForMember(txs []domain.Transaction, name string, confirmedDuplicates []string) []domain.Transaction {
	dup := make(map[string]struct{}, len(confirmedDuplicates))
	for _, id := range confirmedDuplicates {
		dup[id] = struct{}{}
	}
	var out []domain.Transaction
	for _, tx := range txs {
		if tx.Name != name || tx.Type != domain.TxOrder {
			continue
		}
		if _, ok := dup[tx.ID]; ok {
			continue
		}
		out = append(out, tx)
	}
	return out
}
