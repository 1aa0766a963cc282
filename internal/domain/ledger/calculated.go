package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculatedFields is the derived per-entity record served to reports.
// It is a pure function of the snapshot and the window and is never persisted.
type CalculatedFields struct {
	EntityID            string          `json:"entity_id"`
	EntityKind          EntityKind      `json:"entity_kind"`
	EntityName          string          `json:"entity_name,omitempty"`
	PeriodOrderTotal    decimal.Decimal `json:"period_order_total"`
	PeriodInvoicedTotal decimal.Decimal `json:"period_invoiced_total"`
	PeriodPaidTotal     decimal.Decimal `json:"period_paid_total"`
	PeriodInflow        decimal.Decimal `json:"period_inflow"`
	PeriodOutflow       decimal.Decimal `json:"period_outflow"`
	CumulativeBalance   decimal.Decimal `json:"cumulative_balance"`
	CreditDueTotal      decimal.Decimal `json:"credit_due_total"`
	CreditPaidTotal     decimal.Decimal `json:"credit_paid_total"`
	CurrentLiabilities  decimal.Decimal `json:"current_liabilities"`
}

// Params are the inputs shared by every entity in one recompute
type Params struct {
	Window  DateWindow
	Epoch   time.Time
	AsOf    *time.Time
	TaxRate decimal.Decimal
}

// Calculate composes the period totals, the epoch balance and the liabilities
// of one entity.
func Calculate(entity LedgerEntity, b Bucket, p Params) CalculatedFields {
	period := ComputePeriod(b, p.Window, p.TaxRate)
	balance := ComputeBalance(entity, b, p.Epoch, p.AsOf)

	return CalculatedFields{
		EntityID:            entity.ID,
		EntityKind:          b.Kind,
		EntityName:          entity.Name,
		PeriodOrderTotal:    period.OrderTotal,
		PeriodInvoicedTotal: period.InvoicedTotal,
		PeriodPaidTotal:     period.PaidTotal,
		PeriodInflow:        period.Inflow,
		PeriodOutflow:       period.Outflow,
		CumulativeBalance:   balance.Balance,
		CreditDueTotal:      balance.CreditDue,
		CreditPaidTotal:     balance.CreditPaid,
		CurrentLiabilities:  CurrentLiabilities(b.Orders),
	}
}

// CurrentLiabilities is the delivered-but-unpaid value across orders.
// Orders paid ahead of delivery contribute nothing.
func CurrentLiabilities(orders []OrderDocument) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		owed := o.DeliveredAmount.Sub(o.PaidAmount)
		if owed.IsPositive() {
			total = total.Add(owed)
		}
	}
	return total
}
