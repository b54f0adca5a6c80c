// Package observability holds the Prometheus metrics for the ledger engine.
// The pure core never touches these; the service layer records them at its
// boundaries so the engine stays a total function over its inputs.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Normalizer Metrics ─────────────────────────────────────────────────────

// RecordsNormalized tracks total raw records run through the migration pass.
var RecordsNormalized = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "vipledger",
	Subsystem: "normalizer",
	Name:      "records_total",
	Help:      "Total raw records processed by the migration pass.",
})

// RecordsDropped tracks records dropped for a blank member name.
var RecordsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "vipledger",
	Subsystem: "normalizer",
	Name:      "records_dropped_total",
	Help:      "Total raw records dropped during normalization.",
})

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

// LedgerSize tracks the current persisted ledger length.
var LedgerSize = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "vipledger",
	Subsystem: "ledger",
	Name:      "transactions",
	Help:      "Current number of transactions in the persisted ledger.",
})

// TransactionsRecorded tracks appended transactions by type.
var TransactionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "vipledger",
	Subsystem: "ledger",
	Name:      "recorded_total",
	Help:      "Total transactions appended to the ledger by type.",
}, []string{"type"})

// DuplicatesSkipped tracks duplicate ids suppressed during scans.
var DuplicatesSkipped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "vipledger",
	Subsystem: "ledger",
	Name:      "duplicates_skipped_total",
	Help:      "Total duplicate transaction ids skipped during ledger scans.",
})

// ─── Reconciler Metrics ─────────────────────────────────────────────────────

// Discrepancies tracks members whose calculated balance diverged on the most
// recent reconciliation.
var Discrepancies = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "vipledger",
	Subsystem: "reconcile",
	Name:      "discrepancies",
	Help:      "Members with a non-zero balance diff in the last reconciliation.",
})

// ─── Harness Metrics ────────────────────────────────────────────────────────

// HarnessRuns tracks self-verification runs by outcome.
var HarnessRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "vipledger",
	Subsystem: "verify",
	Name:      "runs_total",
	Help:      "Total self-verification harness runs by outcome.",
}, []string{"outcome"})

// CheckFailures tracks individual check failures by check name.
var CheckFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "vipledger",
	Subsystem: "verify",
	Name:      "check_failures_total",
	Help:      "Total individual harness check failures by check.",
}, []string{"check"})
