// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of the ledger engine — everything else depends on it.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Ledger blobs store amounts as bare JSON numbers; the quoted default would
	// break compatibility with every existing backup file.
	decimal.MarshalJSONWithoutQuotes = true
}

// ─── Transaction Types ──────────────────────────────────────────────────────

// TxType classifies a ledger entry.
type TxType string

const (
	TxOpening TxType = "opening"
	TxTopup   TxType = "topup"
	TxCashout TxType = "cashout"
	TxOrder   TxType = "order"
)

// Known reports whether t is one of the four recognized transaction types.
// Unrecognized types are carried but never summed.
func (t TxType) Known() bool {
	switch t {
	case TxOpening, TxTopup, TxCashout, TxOrder:
		return true
	}
	return false
}

// InferType resolves a missing type from the amount's sign.
func InferType(amount decimal.Decimal) TxType {
	if amount.Sign() >= 0 {
		return TxTopup
	}
	return TxCashout
}

// PaymentVip is the payment method that draws down a member's ledger balance.
const PaymentVip = "vip"

// Transaction is one canonical ledger entry. The id is the idempotency key;
// order-only fields are pointers so absence survives a round trip.
type Transaction struct {
	ID     string          `json:"id"`
	TS     time.Time       `json:"ts"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Type   TxType          `json:"type"`

	// Order-only fields.
	OrderID       *string          `json:"orderId,omitempty"`
	IsVipPayment  *bool            `json:"isVipPayment,omitempty"`
	PaymentMethod string           `json:"paymentMethod,omitempty"`
	Paid          *bool            `json:"paid,omitempty"`
	DetailIndex   *int             `json:"detailIndex,omitempty"`
	ItemName      string           `json:"itemName,omitempty"`
	Qty           *int             `json:"qty,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unitPrice,omitempty"`

	// Orphan marks a record whose order no longer exists; excluded from sums.
	Orphan bool `json:"orphan,omitempty"`
}

// CountsTowardBalance reports whether this record contributes to its member's
// balance. Cash-paid order lines targeting a member must NOT reduce the
// prepaid balance; only VIP-paid orders draw it down.
func (tx Transaction) CountsTowardBalance() bool {
	if tx.Orphan {
		return false
	}
	if strings.TrimSpace(tx.Name) == "" {
		return false
	}
	if !tx.Type.Known() {
		return false
	}
	if tx.Type == TxOrder {
		vip := tx.IsVipPayment != nil && *tx.IsVipPayment
		return vip || tx.PaymentMethod == PaymentVip
	}
	return true
}

// ─── Balances ───────────────────────────────────────────────────────────────

// Balances maps a member name to a signed balance. Always produced fresh;
// callers never mutate a Balances they did not create.
type Balances map[string]decimal.Decimal

// Get returns the member's balance, zero for unknown members.
func (b Balances) Get(name string) decimal.Decimal {
	if v, ok := b[name]; ok {
		return v
	}
	return decimal.Zero
}

// Clone returns an independent copy.
func (b Balances) Clone() Balances {
	out := make(Balances, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// ─── Order History Types ────────────────────────────────────────────────────

// Order is one entry of the raw order history, the second source of truth the
// batch reconciler cross-checks the ledger against.
type Order struct {
	ID       string        `json:"id,omitempty"`
	Date     string        `json:"date,omitempty"`
	ItemName string        `json:"itemName,omitempty"`
	Details  []OrderDetail `json:"details,omitempty"`
}

// OrderDetail is one line item of an order.
type OrderDetail struct {
	Name          string          `json:"name"`
	Qty           int             `json:"qty,omitempty"`
	Due           decimal.Decimal `json:"due"`
	Paid          bool            `json:"paid"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
}

// ─── Backup Document ────────────────────────────────────────────────────────

// BackupVersion is the current backup document schema version.
const BackupVersion = "1.0"

// Backup is the document exchanged with the backup transport. The reconciler
// reads exactly orderHistory, vipTransactions and vipList from it.
type Backup struct {
	OrderHistory    []Order       `json:"orderHistory"`
	VipTransactions []Transaction `json:"vipTransactions"`
	VipList         string        `json:"vipList"`
	Timestamp       time.Time     `json:"timestamp"`
	Version         string        `json:"version"`
}

// ─── Utilities ──────────────────────────────────────────────────────────────

// MemberNames returns the distinct trimmed member names present in the ledger.
func MemberNames(txs []Transaction) map[string]struct{} {
	names := make(map[string]struct{})
	for _, tx := range txs {
		name := strings.TrimSpace(tx.Name)
		if name != "" {
			names[name] = struct{}{}
		}
	}
	return names
}
