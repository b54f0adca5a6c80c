// Package ledger is the pure reconciliation engine: normalization of raw
// records into the canonical schema, the balance fold, and duplicate-id
// suppression. No I/O, no shared state — every entry point takes its inputs
// by value and returns fresh outputs.
package ledger

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderhelper/vipledger/internal/domain"
)

// DefaultLimit bounds the persisted ledger: the migration pass ages out
// everything but the most recent records.
const DefaultLimit = 200

// timeNow is swapped out in tests.
var timeNow = time.Now

// ─── Raw Records ────────────────────────────────────────────────────────────

// RawRecord is one ledger entry as found in storage: possibly missing its id,
// timestamp or type, with an id that may be a string or a bare number.
// The normalizer is the single translation boundary from this shape into
// domain.Transaction.
type RawRecord struct {
	ID            json.RawMessage `json:"id"`
	TS            string          `json:"ts"`
	Name          string          `json:"name"`
	Amount        json.Number     `json:"amount"`
	Type          string          `json:"type"`
	OrderID       *string         `json:"orderId"`
	IsVipPayment  *bool           `json:"isVipPayment"`
	PaymentMethod *string         `json:"paymentMethod"`
	Paid          *bool           `json:"paid"`
	DetailIndex   *int            `json:"detailIndex"`
	ItemName      *string         `json:"itemName"`
	Qty           *int            `json:"qty"`
	UnitPrice     *json.Number    `json:"unitPrice"`
	Orphan        bool            `json:"orphan"`
}

// idString returns the record id as a trimmed string, "" when absent.
// Numeric ids keep their literal digits.
func (r RawRecord) idString() string {
	s := strings.TrimSpace(string(r.ID))
	if s == "" || s == "null" {
		return ""
	}
	var q string
	if err := json.Unmarshal(r.ID, &q); err == nil {
		return strings.TrimSpace(q)
	}
	return s
}

// idEpochMillis interprets a purely numeric id as an epoch-millisecond
// timestamp. Early records used Date.now() as both id and creation time.
func (r RawRecord) idEpochMillis() (time.Time, bool) {
	id := r.idString()
	if id == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// amount parses the raw amount, reporting whether it is a finite number.
func (r RawRecord) amount() (decimal.Decimal, bool) {
	s := strings.TrimSpace(r.Amount.String())
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// DecodeRaw parses a ledger blob into raw records. Elements that are not
// objects of the expected shape are skipped — the ledger is hand-edited over
// time and must tolerate historical noise. A blob that is not a JSON array at
// all yields domain.ErrLedgerCorrupted.
func DecodeRaw(blob string) ([]RawRecord, error) {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return nil, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(blob), &elems); err != nil {
		return nil, domain.ErrLedgerCorrupted
	}
	out := make([]RawRecord, 0, len(elems))
	for _, e := range elems {
		var r RawRecord
		if err := json.Unmarshal(e, &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// ─── Normalizer ─────────────────────────────────────────────────────────────

// Normalize migrates raw records into the canonical schema.
//
// With migrate false the input passes through as a typed re-validation: no id
// generation, no timestamp repair, no order defaulting, no truncation; only a
// missing type is sign-inferred, since that is schema, not repair. With migrate
// true each record gets a non-empty id (generated when missing), a parseable
// timestamp (explicit ts, else a numeric id read as epoch milliseconds, else
// now), a type (explicit or sign-inferred) and, for order records only, the
// documented defaults. Records with a blank name are dropped and the result
// is truncated to the most recent limit records.
//
// Persistence of the result is the caller's responsibility.
func Normalize(raw []RawRecord, migrate bool, limit int) []domain.Transaction {
	if !migrate {
		out := make([]domain.Transaction, 0, len(raw))
		for _, r := range raw {
			out = append(out, r.revalidate())
		}
		return out
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	out := make([]domain.Transaction, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}

		amt, finite := r.amount()
		if !finite {
			amt = decimal.Zero
		}

		typ := domain.TxType(r.Type)
		if r.Type == "" {
			typ = domain.InferType(amt)
		}

		id := r.idString()
		if id == "" {
			id = uuid.NewString()
		}

		ts := timeNow().UTC()
		if t, ok := parseTS(r.TS); ok {
			ts = t
		} else if t, ok := r.idEpochMillis(); ok {
			ts = t
		}

		tx := domain.Transaction{
			ID:     id,
			TS:     ts,
			Name:   name,
			Amount: amt,
			Type:   typ,
			Orphan: r.Orphan,
		}
		r.carryOptional(&tx)

		if typ == domain.TxOrder {
			applyOrderDefaults(&tx)
		}

		out = append(out, tx)
	}

	// Bounded ring: age out the oldest entries.
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// revalidate converts a raw record field-for-field, preserving whatever is
// there. Used while the migration flag is off. A missing type is still
// sign-inferred — it is part of the canonical schema, not a repair — so
// typeless legacy records keep counting toward balances under the old
// behavior.
func (r RawRecord) revalidate() domain.Transaction {
	amt, _ := r.amount()
	ts, _ := parseTS(r.TS)
	typ := domain.TxType(r.Type)
	if r.Type == "" {
		typ = domain.InferType(amt)
	}
	tx := domain.Transaction{
		ID:     r.idString(),
		TS:     ts,
		Name:   r.Name,
		Amount: amt,
		Type:   typ,
		Orphan: r.Orphan,
	}
	r.carryOptional(&tx)
	return tx
}

// carryOptional copies order-context fields only when present on the input.
// No field invention happens here; defaults are a separate, order-only step.
func (r RawRecord) carryOptional(tx *domain.Transaction) {
	if r.OrderID != nil {
		v := *r.OrderID
		tx.OrderID = &v
	}
	if r.IsVipPayment != nil {
		v := *r.IsVipPayment
		tx.IsVipPayment = &v
	}
	if r.PaymentMethod != nil {
		tx.PaymentMethod = *r.PaymentMethod
	}
	if r.Paid != nil {
		v := *r.Paid
		tx.Paid = &v
	}
	if r.DetailIndex != nil {
		v := *r.DetailIndex
		tx.DetailIndex = &v
	}
	if r.ItemName != nil {
		tx.ItemName = *r.ItemName
	}
	if r.Qty != nil {
		v := *r.Qty
		tx.Qty = &v
	}
	if r.UnitPrice != nil {
		if d, err := decimal.NewFromString(r.UnitPrice.String()); err == nil {
			tx.UnitPrice = &d
		}
	}
}

// applyOrderDefaults fills the order-only migration defaults for fields that
// are absent. An old order record predates the cash/VIP split, so it was a
// paid VIP payment by definition.
func applyOrderDefaults(tx *domain.Transaction) {
	if tx.IsVipPayment == nil {
		v := true
		tx.IsVipPayment = &v
	}
	if tx.PaymentMethod == "" {
		tx.PaymentMethod = domain.PaymentVip
	}
	if tx.Paid == nil {
		v := true
		tx.Paid = &v
	}
}

// parseTS parses an ISO-8601 instant, reporting success.
func parseTS(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
