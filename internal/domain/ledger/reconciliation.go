package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ReconciliationStatus is the status flag stored on an invoice line
type ReconciliationStatus string

const (
	ReconciliationStatusNone    ReconciliationStatus = ""
	ReconciliationStatusPartial ReconciliationStatus = "partial"
	ReconciliationStatusFull    ReconciliationStatus = "full"
	ReconciliationStatusNA      ReconciliationStatus = "na"
)

// ParseReconciliationStatus normalizes a stored flag. Unknown values map to none.
func ParseReconciliationStatus(s string) ReconciliationStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "partial":
		return ReconciliationStatusPartial
	case "full":
		return ReconciliationStatusFull
	case "na", "n/a":
		return ReconciliationStatusNA
	default:
		return ReconciliationStatusNone
	}
}

// ReconciliationBucket is the derived classification of an invoice line
type ReconciliationBucket string

const (
	ReconciliationBucketNone    ReconciliationBucket = "NONE"
	ReconciliationBucketPartial ReconciliationBucket = "PARTIAL"
	ReconciliationBucketFull    ReconciliationBucket = "FULL"
	ReconciliationBucketNA      ReconciliationBucket = "NA"
)

// AllReconciliationBuckets lists every bucket in display order
var AllReconciliationBuckets = []ReconciliationBucket{
	ReconciliationBucketNone,
	ReconciliationBucketPartial,
	ReconciliationBucketFull,
	ReconciliationBucketNA,
}

// IsValid checks if the bucket is one of the four known buckets
func (b ReconciliationBucket) IsValid() bool {
	switch b {
	case ReconciliationBucketNone, ReconciliationBucketPartial, ReconciliationBucketFull, ReconciliationBucketNA:
		return true
	}
	return false
}

// String returns the string representation of ReconciliationBucket
func (b ReconciliationBucket) String() string {
	return string(b)
}

// ParseReconciliationBucket accepts bucket names in any case
func ParseReconciliationBucket(s string) (ReconciliationBucket, bool) {
	b := ReconciliationBucket(strings.ToUpper(strings.TrimSpace(s)))
	return b, b.IsValid()
}

// ClassifyLine places an invoice line in exactly one bucket. Explicit na and
// full flags win; otherwise the reconciled amount decides, with any
// over-reconciliation treated as full.
func ClassifyLine(line InvoiceLine) ReconciliationBucket {
	switch line.ReconciliationStatus {
	case ReconciliationStatusNA:
		return ReconciliationBucketNA
	case ReconciliationStatusFull:
		return ReconciliationBucketFull
	}
	switch {
	case !line.ReconciledAmount.IsPositive():
		return ReconciliationBucketNone
	case line.ReconciledAmount.LessThan(line.Amount):
		return ReconciliationBucketPartial
	default:
		return ReconciliationBucketFull
	}
}

// BucketTotals is the count and invoice amount of one bucket
type BucketTotals struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// ReconciliationSummary aggregates classified lines. NA lines are counted but
// excluded from every amount total.
type ReconciliationSummary struct {
	TotalLines                  int                                   `json:"total_lines"`
	Buckets                     map[ReconciliationBucket]BucketTotals `json:"buckets"`
	InvoicedAmount              decimal.Decimal                       `json:"invoiced_amount"`
	ReconciledAmount            decimal.Decimal                       `json:"reconciled_amount"`
	PartialPendingAmount        decimal.Decimal                       `json:"partial_pending_amount"`
	PendingReconciliationAmount decimal.Decimal                       `json:"pending_reconciliation_amount"`
}

// SummarizeReconciliation classifies and totals lines
func SummarizeReconciliation(lines []InvoiceLine) ReconciliationSummary {
	summary := ReconciliationSummary{
		TotalLines: len(lines),
		Buckets:    make(map[ReconciliationBucket]BucketTotals, len(AllReconciliationBuckets)),
	}
	for _, b := range AllReconciliationBuckets {
		summary.Buckets[b] = BucketTotals{Amount: decimal.Zero}
	}

	noneAmount := decimal.Zero
	for _, line := range lines {
		bucket := ClassifyLine(line)
		totals := summary.Buckets[bucket]
		totals.Count++
		if bucket != ReconciliationBucketNA {
			totals.Amount = totals.Amount.Add(line.Amount)
		}
		summary.Buckets[bucket] = totals

		switch bucket {
		case ReconciliationBucketNA:
			continue
		case ReconciliationBucketFull:
			summary.ReconciledAmount = summary.ReconciledAmount.Add(line.Amount)
		case ReconciliationBucketPartial:
			summary.ReconciledAmount = summary.ReconciledAmount.Add(line.ReconciledAmount)
			summary.PartialPendingAmount = summary.PartialPendingAmount.Add(line.Amount.Sub(line.ReconciledAmount))
		case ReconciliationBucketNone:
			noneAmount = noneAmount.Add(line.Amount)
		}
		summary.InvoicedAmount = summary.InvoicedAmount.Add(line.Amount)
	}
	summary.PendingReconciliationAmount = summary.PartialPendingAmount.Add(noneAmount)
	return summary
}
