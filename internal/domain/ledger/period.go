package ledger

import (
	"github.com/shopspring/decimal"
)

// PeriodTotals are the window-bounded sums for one entity.
// Each sum filters on its own date field, so an invoice line dated inside the
// window counts even when its parent order was created outside it.
type PeriodTotals struct {
	OrderTotal     decimal.Decimal
	InvoicedTotal  decimal.Decimal
	PaidTotal      decimal.Decimal
	Inflow         decimal.Decimal
	Outflow        decimal.Decimal
	PaymentOutflow decimal.Decimal
	ExpenseOutflow decimal.Decimal
	// InvoiceLineSums is the in-window invoiced amount per order id
	InvoiceLineSums map[string]decimal.Decimal
}

// ComputePeriod sums the bucket's documents that fall in w.
//   - orders by creation date, with the tax uplift on taxable work orders
//   - invoice lines by their own date
//   - payments, inflows and expenses by effective date
func ComputePeriod(b Bucket, w DateWindow, taxRate decimal.Decimal) PeriodTotals {
	txs := b.Transactions(taxRate)

	totals := PeriodTotals{
		OrderTotal:      SumInWindow(txs, SourceOrder, w),
		InvoicedTotal:   SumInWindow(txs, SourceInvoiceLine, w),
		PaidTotal:       SumInWindow(txs, SourcePayment, w),
		Inflow:          SumInWindow(txs, SourceInflow, w),
		ExpenseOutflow:  SumInWindow(txs, SourceExpense, w),
		InvoiceLineSums: make(map[string]decimal.Decimal),
	}
	totals.PaymentOutflow = totals.PaidTotal
	totals.Outflow = totals.PaymentOutflow.Add(totals.ExpenseOutflow)

	for _, tx := range txs {
		if tx.Source != SourceInvoiceLine || !w.Contains(tx.Date) {
			continue
		}
		totals.InvoiceLineSums[tx.DocumentID] = totals.InvoiceLineSums[tx.DocumentID].Add(tx.Amount)
	}
	return totals
}

// Add returns the element-wise sum of two period totals
func (p PeriodTotals) Add(other PeriodTotals) PeriodTotals {
	sum := PeriodTotals{
		OrderTotal:      p.OrderTotal.Add(other.OrderTotal),
		InvoicedTotal:   p.InvoicedTotal.Add(other.InvoicedTotal),
		PaidTotal:       p.PaidTotal.Add(other.PaidTotal),
		Inflow:          p.Inflow.Add(other.Inflow),
		Outflow:         p.Outflow.Add(other.Outflow),
		PaymentOutflow:  p.PaymentOutflow.Add(other.PaymentOutflow),
		ExpenseOutflow:  p.ExpenseOutflow.Add(other.ExpenseOutflow),
		InvoiceLineSums: make(map[string]decimal.Decimal, len(p.InvoiceLineSums)),
	}
	for k, v := range p.InvoiceLineSums {
		sum.InvoiceLineSums[k] = v
	}
	for k, v := range other.InvoiceLineSums {
		sum.InvoiceLineSums[k] = sum.InvoiceLineSums[k].Add(v)
	}
	return sum
}
