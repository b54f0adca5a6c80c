package domain

import (
	"context"
	"time"
)

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; the application layer depends on them.

// Store abstracts the string-keyed blob store holding the ledger, the balance
// snapshot and the raw order history. Every read hands back a fully
// materialized value; the core never sees a partial write. Decoding the
// ledger blob into canonical transactions is the normalizer's job, not the
// store's.
type Store interface {
	// LedgerBlob returns the raw ledger JSON exactly as stored ("[]" if
	// absent). Also used for byte-for-byte idempotence checks.
	LedgerBlob() (string, error)

	// SaveLedger replaces the persisted transaction array.
	SaveLedger(txs []Transaction) error

	// LoadSnapshot returns the snapshot text and its update timestamp.
	// Returns ErrSnapshotMissing when no snapshot has been written.
	LoadSnapshot() (text string, updatedAt time.Time, err error)

	// SaveSnapshot replaces the snapshot text and update timestamp.
	SaveSnapshot(text string, updatedAt time.Time) error

	// LoadOrderHistory decodes the raw order history (empty if absent).
	LoadOrderHistory() ([]Order, error)

	// SaveOrderHistory replaces the raw order history (backup restore path).
	SaveOrderHistory(orders []Order) error
}

// BackupTransport abstracts the hosted file store backups are pushed to.
type BackupTransport interface {
	// Upload writes the backup document under the given file name.
	Upload(ctx context.Context, name string, doc Backup) error

	// Download fetches a backup document by file name.
	// Returns ErrBackupNotFound when the file does not exist.
	Download(ctx context.Context, name string) (Backup, error)
}
