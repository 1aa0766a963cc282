package ledger

import (
	"github.com/shopspring/decimal"
)

// SourceKind tags which collection a Transaction was normalized from
type SourceKind string

const (
	SourceOrder       SourceKind = "ORDER"
	SourceInvoiceLine SourceKind = "INVOICE_LINE"
	SourcePayment     SourceKind = "PAYMENT"
	SourceInflow      SourceKind = "INFLOW"
	SourceExpense     SourceKind = "EXPENSE"
)

// Transaction is the common {entity, amount, date} shape every source is
// normalized into. Source, DocumentID and LineKey trace it back to the record.
type Transaction struct {
	Source     SourceKind
	DocumentID string
	LineKey    string
	EntityID   string
	Amount     decimal.Decimal
	Date       string
}

// FromOrder normalizes an order, dated by its creation date
func FromOrder(o OrderDocument, kind EntityKind, taxRate decimal.Decimal) Transaction {
	return Transaction{
		Source:     SourceOrder,
		DocumentID: o.ID,
		EntityID:   o.EntityKey(kind),
		Amount:     o.OrderValue(taxRate),
		Date:       o.CreationDate,
	}
}

// FromInvoiceLine normalizes one invoice line of o, dated by the line itself
func FromInvoiceLine(o OrderDocument, line InvoiceLine, kind EntityKind) Transaction {
	return Transaction{
		Source:     SourceInvoiceLine,
		DocumentID: o.ID,
		LineKey:    line.DateKey,
		EntityID:   o.EntityKey(kind),
		Amount:     line.Amount,
		Date:       line.Date,
	}
}

// FromPayment normalizes a payment, dated by its effective date
func FromPayment(p PaymentDocument, kind EntityKind) Transaction {
	return Transaction{
		Source:     SourcePayment,
		DocumentID: p.ID,
		EntityID:   p.EntityKey(kind),
		Amount:     p.Amount,
		Date:       p.EffectiveDate(),
	}
}

// FromInflow normalizes a project inflow
func FromInflow(i InflowDocument) Transaction {
	return Transaction{
		Source:     SourceInflow,
		DocumentID: i.ID,
		EntityID:   i.ProjectID,
		Amount:     i.Amount,
		Date:       i.EffectiveDate(),
	}
}

// FromExpense normalizes a project expense
func FromExpense(e ExpenseDocument) Transaction {
	return Transaction{
		Source:     SourceExpense,
		DocumentID: e.ID,
		EntityID:   e.ProjectID,
		Amount:     e.Amount,
		Date:       e.EffectiveDate(),
	}
}

// SumInWindow adds up the amounts of the transactions from source whose date is in w
func SumInWindow(txs []Transaction, source SourceKind, w DateWindow) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Source != source || !w.Contains(tx.Date) {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total
}
