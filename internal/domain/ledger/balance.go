package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the running position of an entity from the epoch onwards
type Balance struct {
	CumulativeInvoiced decimal.Decimal `json:"cumulative_invoiced"`
	CumulativePaid     decimal.Decimal `json:"cumulative_paid"`
	CreditDue          decimal.Decimal `json:"credit_due"`
	CreditPaid         decimal.Decimal `json:"credit_paid"`
	Balance            decimal.Decimal `json:"balance"`
}

// ComputeBalance sums invoice lines and payments dated in [epoch, asOf] and
// seeds them with the entity's opening balances. A nil asOf leaves the window
// open at the end. The reporting window is deliberately not an input here.
func ComputeBalance(entity LedgerEntity, b Bucket, epoch time.Time, asOf *time.Time) Balance {
	w := DateWindow{Start: &epoch, End: asOf}

	invoiced := decimal.Zero
	for _, line := range b.InvoiceLines {
		if w.Contains(line.Date) {
			invoiced = invoiced.Add(line.Amount)
		}
	}
	paid := decimal.Zero
	for _, p := range b.Payments {
		if w.Contains(p.EffectiveDate()) {
			paid = paid.Add(p.Amount)
		}
	}

	creditDue := entity.OpeningInvoiceBalance.Add(invoiced)
	creditPaid := entity.OpeningPaymentBalance.Add(paid)
	return Balance{
		CumulativeInvoiced: invoiced,
		CumulativePaid:     paid,
		CreditDue:          creditDue,
		CreditPaid:         creditPaid,
		Balance:            creditDue.Sub(creditPaid),
	}
}
