package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. The calculation path
// never returns errors; these surface only at persistence and transport
// boundaries.

var (
	// Store errors
	ErrLedgerCorrupted = errors.New("ledger blob is not a valid transaction array")
	ErrSnapshotMissing = errors.New("no balance snapshot stored")

	// Record errors
	ErrBlankName      = errors.New("member name is blank")
	ErrBadAmount      = errors.New("amount is not a finite number")
	ErrOrderIDMissing = errors.New("order transaction requires an order id")

	// Backup errors
	ErrBackupTokenMissing = errors.New("backup token not configured")
	ErrBackupNotFound     = errors.New("backup file not found")
)
