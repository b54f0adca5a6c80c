// Package sqlite persists the ledger, snapshot and order history as
// string-keyed blobs in a single SQLite file. The schema deliberately mirrors
// the flat key/value layout the data has always lived in: one blob per key,
// read and written whole — the engine never sees a partial write.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/orderhelper/vipledger/internal/domain"
)

// Storage keys, unchanged from the original data layout.
const (
	keyOrderHistory = "orderHistory"
	keyLedger       = "vipTransactions"
	keyVipList      = "vipList"
	keyVipUpdatedAt = "vipUpdatedAt"
)

// DB is the blob store. It implements domain.Store.
type DB struct {
	db *sql.DB
}

// Migrations returns the schema migration statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS kv_store (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
	}
}

// Open opens (creating if needed) the store at path and applies migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// Single-writer tool; one connection keeps SQLite happy.
	db.SetMaxOpenConns(1)

	for _, stmt := range Migrations() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate store: %w", err)
		}
	}
	return &DB{db: db}, nil
}

// Close releases the underlying database handle.
func (d *DB) Close() error { return d.db.Close() }

// ─── Blob Operations ────────────────────────────────────────────────────────

func (d *DB) get(key string) (string, bool, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (d *DB) set(key, value string) error {
	_, err := d.db.Exec(`
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = datetime('now')
	`, key, value)
	return err
}

// ─── domain.Store ───────────────────────────────────────────────────────────

// LedgerBlob returns the raw ledger JSON exactly as stored, "[]" if absent.
func (d *DB) LedgerBlob() (string, error) {
	blob, ok, err := d.get(keyLedger)
	if err != nil {
		return "", fmt.Errorf("read ledger: %w", err)
	}
	if !ok {
		return "[]", nil
	}
	return blob, nil
}

// SaveLedger replaces the persisted transaction array.
func (d *DB) SaveLedger(txs []domain.Transaction) error {
	if txs == nil {
		txs = []domain.Transaction{}
	}
	blob, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := d.set(keyLedger, string(blob)); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// LoadSnapshot returns the snapshot text and its update timestamp.
func (d *DB) LoadSnapshot() (string, time.Time, error) {
	text, ok, err := d.get(keyVipList)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("read snapshot: %w", err)
	}
	if !ok {
		return "", time.Time{}, domain.ErrSnapshotMissing
	}

	var updatedAt time.Time
	if ts, ok, err := d.get(keyVipUpdatedAt); err == nil && ok {
		updatedAt, _ = time.Parse(time.RFC3339Nano, ts)
	}
	return text, updatedAt, nil
}

// SaveSnapshot replaces the snapshot text and update timestamp.
func (d *DB) SaveSnapshot(text string, updatedAt time.Time) error {
	if err := d.set(keyVipList, text); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := d.set(keyVipUpdatedAt, updatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("write snapshot timestamp: %w", err)
	}
	return nil
}

// LoadOrderHistory decodes the raw order history, empty if absent.
func (d *DB) LoadOrderHistory() ([]domain.Order, error) {
	blob, ok, err := d.get(keyOrderHistory)
	if err != nil {
		return nil, fmt.Errorf("read order history: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var orders []domain.Order
	if err := json.Unmarshal([]byte(blob), &orders); err != nil {
		return nil, fmt.Errorf("decode order history: %w", err)
	}
	return orders, nil
}

// SaveOrderHistory replaces the raw order history (used by backup restore).
func (d *DB) SaveOrderHistory(orders []domain.Order) error {
	if orders == nil {
		orders = []domain.Order{}
	}
	blob, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("encode order history: %w", err)
	}
	if err := d.set(keyOrderHistory, string(blob)); err != nil {
		return fmt.Errorf("write order history: %w", err)
	}
	return nil
}
