// Package vip is the application layer: it wires the pure reconciliation
// engine to the injected blob store and records metrics at the boundary.
// All state lives in the store; the service holds no balances of its own.
package vip

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderhelper/vipledger/internal/domain"
	"github.com/orderhelper/vipledger/internal/infra/observability"
	"github.com/orderhelper/vipledger/internal/ledger"
	"github.com/orderhelper/vipledger/internal/reconcile"
	"github.com/orderhelper/vipledger/internal/snapshot"
	"github.com/orderhelper/vipledger/internal/verify"
)

// Config controls service behavior.
type Config struct {
	// MigrationEnabled turns the normalizer's migration pass on. Off, raw
	// records pass through as a typed re-validation only.
	MigrationEnabled bool

	// LedgerLimit bounds the persisted ledger (default 200).
	LedgerLimit int

	// ConfirmedDuplicates lists transaction ids confirmed as duplicate
	// imports. Nothing outside this list is ever auto-deleted.
	ConfirmedDuplicates []string
}

// DefaultConfig returns safe service defaults.
func DefaultConfig() Config {
	return Config{
		MigrationEnabled: true,
		LedgerLimit:      ledger.DefaultLimit,
	}
}

// Service exposes the ledger operations used by the CLI and the HTTP API.
type Service struct {
	store domain.Store
	cfg   Config
}

// New creates the service around an injected store.
func New(store domain.Store, cfg Config) *Service {
	if cfg.LedgerLimit <= 0 {
		cfg.LedgerLimit = ledger.DefaultLimit
	}
	return &Service{store: store, cfg: cfg}
}

// ─── Ledger Access ──────────────────────────────────────────────────────────

// Ledger returns the canonical transaction list: raw blob, decoded, run
// through the normalizer under the configured migration flag. The stored blob
// is not touched; only Migrate persists a normalized ledger.
func (s *Service) Ledger() ([]domain.Transaction, error) {
	blob, err := s.store.LedgerBlob()
	if err != nil {
		return nil, err
	}
	raw, err := ledger.DecodeRaw(blob)
	if err != nil {
		return nil, err
	}
	// Reading never truncates; the bound applies on the migration write path.
	limit := len(raw)
	return ledger.Normalize(raw, s.cfg.MigrationEnabled, limit), nil
}

// Balances derives the current balance per member from the ledger alone.
func (s *Service) Balances() (domain.Balances, error) {
	txs, err := s.Ledger()
	if err != nil {
		return nil, err
	}
	return ledger.Calculate(txs, nil), nil
}

// Recompute rebuilds the snapshot text from the ledger and persists it.
// The ledger itself is never written here — recomputation is a pure function
// of the ledger, so running it twice must be a no-op. When the derived text
// matches what is stored, the write (including the updated-at timestamp) is
// skipped: vipUpdatedAt records the last actual balance change, not the last
// time a rebuild ran.
func (s *Service) Recompute() error {
	balances, err := s.Balances()
	if err != nil {
		return err
	}
	text := snapshot.Serialize(balances)

	if current, _, err := s.store.LoadSnapshot(); err == nil && current == text {
		return nil
	}
	return s.store.SaveSnapshot(text, time.Now())
}

// ─── Recording ──────────────────────────────────────────────────────────────

// RecordParams are the inputs for one new ledger entry. Producers supply
// cashout/order amounts already negative; the service does not re-sign.
type RecordParams struct {
	Name          string
	Amount        decimal.Decimal
	Type          domain.TxType
	TS            time.Time
	OrderID       *string
	IsVipPayment  *bool
	PaymentMethod string
	Paid          *bool
	DetailIndex   *int
	ItemName      string
	Qty           *int
	UnitPrice     *decimal.Decimal
}

// Record validates and appends one transaction to the persisted ledger.
func (s *Service) Record(p RecordParams) (*domain.Transaction, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, domain.ErrBlankName
	}

	typ := p.Type
	if typ == "" {
		typ = domain.InferType(p.Amount)
	}

	ts := p.TS
	if ts.IsZero() {
		ts = time.Now()
	}

	tx := domain.Transaction{
		ID:     uuid.NewString(),
		TS:     ts.UTC(),
		Name:   name,
		Amount: p.Amount,
		Type:   typ,
	}

	if typ == domain.TxOrder {
		if p.OrderID == nil {
			return nil, domain.ErrOrderIDMissing
		}
		tx.OrderID = p.OrderID
		tx.IsVipPayment = p.IsVipPayment
		tx.PaymentMethod = p.PaymentMethod
		tx.Paid = p.Paid
		tx.DetailIndex = p.DetailIndex
		tx.ItemName = p.ItemName
		tx.Qty = p.Qty
		tx.UnitPrice = p.UnitPrice
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

	txs, err := s.Ledger()
	if err != nil {
		return nil, err
	}
	txs = append(txs, tx)
	if err := s.store.SaveLedger(txs); err != nil {
		return nil, err
	}

	observability.TransactionsRecorded.WithLabelValues(string(typ)).Inc()
	observability.LedgerSize.Set(float64(len(txs)))
	return &tx, nil
}

// ─── Maintenance ────────────────────────────────────────────────────────────

// Migrate runs the one-time migration pass: the stored ledger is rewritten in
// canonical form and truncated to the most recent LedgerLimit entries.
// Returns the resulting ledger length.
func (s *Service) Migrate() (int, error) {
	blob, err := s.store.LedgerBlob()
	if err != nil {
		return 0, err
	}
	raw, err := ledger.DecodeRaw(blob)
	if err != nil {
		return 0, err
	}

	normalized := ledger.Normalize(raw, true, s.cfg.LedgerLimit)
	if err := s.store.SaveLedger(normalized); err != nil {
		return 0, err
	}

	observability.RecordsNormalized.Add(float64(len(raw)))
	observability.RecordsDropped.Add(float64(len(raw) - len(normalized)))
	observability.LedgerSize.Set(float64(len(normalized)))
	log.Printf("[vip] migrated ledger: %d raw → %d canonical", len(raw), len(normalized))
	return len(normalized), nil
}

// RemoveConfirmedDuplicates deletes ledger records whose ids appear on the
// configured confirmed-duplicate list. This is the only deletion path.
// Returns how many records were removed.
func (s *Service) RemoveConfirmedDuplicates() (int, error) {
	if len(s.cfg.ConfirmedDuplicates) == 0 {
		return 0, nil
	}
	confirmed := make(map[string]struct{}, len(s.cfg.ConfirmedDuplicates))
	for _, id := range s.cfg.ConfirmedDuplicates {
		confirmed[id] = struct{}{}
	}

	txs, err := s.Ledger()
	if err != nil {
		return 0, err
	}
	kept := make([]domain.Transaction, 0, len(txs))
	removed := 0
	for _, tx := range txs {
		if _, ok := confirmed[tx.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, tx)
	}
	if removed == 0 {
		return 0, nil
	}
	if err := s.store.SaveLedger(kept); err != nil {
		return 0, err
	}
	observability.LedgerSize.Set(float64(len(kept)))
	log.Printf("[vip] removed %d confirmed duplicate(s)", removed)
	return removed, nil
}

// ─── Reconciliation ─────────────────────────────────────────────────────────

// Reconcile validates one member's expected balance against the ledger.
func (s *Service) Reconcile(name string, expected decimal.Decimal) (reconcile.Report, error) {
	txs, err := s.Ledger()
	if err != nil {
		return reconcile.Report{}, err
	}
	return reconcile.Validate(name, expected, txs), nil
}

// ReconcileSnapshot validates every member in the stored snapshot against the
// ledger, one report per member.
func (s *Service) ReconcileSnapshot() ([]reconcile.Report, error) {
	text, _, err := s.store.LoadSnapshot()
	if err != nil {
		return nil, err
	}
	txs, err := s.Ledger()
	if err != nil {
		return nil, err
	}

	expected := snapshot.Parse(text)
	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)

	reports := make([]reconcile.Report, 0, len(names))
	invalid := 0
	for _, name := range names {
		r := reconcile.Validate(name, expected[name], txs)
		if !r.Valid {
			invalid++
		}
		reports = append(reports, r)
	}
	observability.Discrepancies.Set(float64(invalid))
	return reports, nil
}

// Audit cross-checks a backup document's ledger against its order history,
// counting suppressed duplicate ids along the way.
func (s *Service) Audit(doc domain.Backup) reconcile.AuditReport {
	if dupes := len(doc.VipTransactions) - len(ledger.Dedupe(doc.VipTransactions)); dupes > 0 {
		observability.DuplicatesSkipped.Add(float64(dupes))
	}
	return reconcile.Audit(doc)
}

// ─── Backup ─────────────────────────────────────────────────────────────────

// BackupDocument materializes the full backup document from stored state.
func (s *Service) BackupDocument() (domain.Backup, error) {
	orders, err := s.store.LoadOrderHistory()
	if err != nil {
		return domain.Backup{}, err
	}
	txs, err := s.Ledger()
	if err != nil {
		return domain.Backup{}, err
	}
	vipList, _, err := s.store.LoadSnapshot()
	if err != nil && !errors.Is(err, domain.ErrSnapshotMissing) {
		return domain.Backup{}, err
	}

	return domain.Backup{
		OrderHistory:    orders,
		VipTransactions: txs,
		VipList:         vipList,
		Timestamp:       time.Now().UTC(),
		Version:         domain.BackupVersion,
	}, nil
}

// Restore writes all three pieces of a backup document back into the store.
func (s *Service) Restore(doc domain.Backup) error {
	if err := s.store.SaveOrderHistory(doc.OrderHistory); err != nil {
		return fmt.Errorf("restore order history: %w", err)
	}
	if err := s.store.SaveLedger(doc.VipTransactions); err != nil {
		return fmt.Errorf("restore ledger: %w", err)
	}
	if err := s.store.SaveSnapshot(doc.VipList, time.Now()); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	return nil
}

// ─── Self-Verification ──────────────────────────────────────────────────────

// Verify runs the self-verification harness against live state.
func (s *Service) Verify() verify.Results {
	h := &verify.Harness{
		Store:      s.store,
		LoadLedger: s.Ledger,
		Recompute:  s.Recompute,
	}
	res := h.Run()

	outcome := "pass"
	if !res.AllPassed {
		outcome = "fail"
	}
	observability.HarnessRuns.WithLabelValues(outcome).Inc()
	for _, c := range res.Checks {
		if !c.Passed {
			observability.CheckFailures.WithLabelValues(c.Name).Inc()
		}
	}
	return res
}
