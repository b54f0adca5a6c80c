package ledger

import "github.com/orderhelper/vipledger/internal/domain"

// Guard tracks transaction ids already seen during a single ledger scan,
// guaranteeing at-most-once application per id even when the same transaction
// appears twice in a raw dump. A Guard is scoped to one scan and discarded
// afterward — never shared.
type Guard struct {
	seen map[string]struct{}
}

// NewGuard returns an empty guard.
func NewGuard() *Guard {
	return &Guard{seen: make(map[string]struct{})}
}

// Admit records the id and reports whether this is its first occurrence.
// A record whose id was already admitted must be skipped entirely,
// regardless of content.
func (g *Guard) Admit(id string) bool {
	if _, ok := g.seen[id]; ok {
		return false
	}
	g.seen[id] = struct{}{}
	return true
}

// Count returns how many distinct ids have been admitted.
func (g *Guard) Count() int { return len(g.seen) }

// Dedupe returns the transactions whose ids pass a fresh guard, preserving
// order. First occurrence wins.
func Dedupe(txs []domain.Transaction) []domain.Transaction {
	g := NewGuard()
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if g.Admit(tx.ID) {
			out = append(out, tx)
		}
	}
	return out
}
