package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// GroupBy partitions items by keyFn. Items with an empty key are skipped;
// every other item lands in exactly one bucket, in input order.
func GroupBy[T any](items []T, keyFn func(T) string) map[string][]T {
	groups := make(map[string][]T)
	for _, item := range items {
		key := keyFn(item)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], item)
	}
	return groups
}

// Collections holds every decoded input collection of one snapshot
type Collections struct {
	Vendors     []LedgerEntity
	Projects    []LedgerEntity
	Orders      []OrderDocument
	Payments    []PaymentDocument
	Inflows     []InflowDocument
	Expenses    []ExpenseDocument
	Attachments []AttachmentDocument
}

// Entities returns the vendor or project list
func (c Collections) Entities(kind EntityKind) []LedgerEntity {
	if kind == EntityKindProject {
		return c.Projects
	}
	return c.Vendors
}

// FindEntity looks up an entity by kind and id
func (c Collections) FindEntity(kind EntityKind, id string) (LedgerEntity, bool) {
	for _, e := range c.Entities(kind) {
		if e.ID == id {
			return e, true
		}
	}
	return LedgerEntity{}, false
}

// OrderIndex maps order ids to orders
func (c Collections) OrderIndex() map[string]OrderDocument {
	index := make(map[string]OrderDocument, len(c.Orders))
	for _, o := range c.Orders {
		index[o.ID] = o
	}
	return index
}

// Bucket is the slice of every collection that belongs to one entity
type Bucket struct {
	Kind         EntityKind
	EntityID     string
	Orders       []OrderDocument
	Payments     []PaymentDocument
	Inflows      []InflowDocument
	Expenses     []ExpenseDocument
	InvoiceLines []InvoiceLine
}

// Transactions normalizes everything in the bucket into Transactions.
// Orders come first, each followed by its invoice lines, then payments,
// inflows and expenses.
func (b Bucket) Transactions(taxRate decimal.Decimal) []Transaction {
	txs := make([]Transaction, 0, len(b.Orders)+len(b.InvoiceLines)+len(b.Payments)+len(b.Inflows)+len(b.Expenses))
	for _, o := range b.Orders {
		txs = append(txs, FromOrder(o, b.Kind, taxRate))
		for _, line := range o.SortedInvoiceLines() {
			txs = append(txs, FromInvoiceLine(o, line, b.Kind))
		}
	}
	for _, p := range b.Payments {
		txs = append(txs, FromPayment(p, b.Kind))
	}
	for _, i := range b.Inflows {
		txs = append(txs, FromInflow(i))
	}
	for _, e := range b.Expenses {
		txs = append(txs, FromExpense(e))
	}
	return txs
}

// BuildBuckets partitions the collections per entity of the given kind.
// Inflows and expenses are project-scoped and only appear in project buckets.
func BuildBuckets(kind EntityKind, c Collections) map[string]*Bucket {
	buckets := make(map[string]*Bucket)
	bucketFor := func(id string) *Bucket {
		b, ok := buckets[id]
		if !ok {
			b = &Bucket{Kind: kind, EntityID: id}
			buckets[id] = b
		}
		return b
	}

	for id, orders := range GroupBy(c.Orders, func(o OrderDocument) string { return o.EntityKey(kind) }) {
		b := bucketFor(id)
		b.Orders = orders
		for _, o := range orders {
			b.InvoiceLines = append(b.InvoiceLines, o.SortedInvoiceLines()...)
		}
	}
	for id, payments := range GroupBy(c.Payments, func(p PaymentDocument) string { return p.EntityKey(kind) }) {
		bucketFor(id).Payments = payments
	}
	if kind == EntityKindProject {
		for id, inflows := range GroupBy(c.Inflows, func(i InflowDocument) string { return i.ProjectID }) {
			bucketFor(id).Inflows = inflows
		}
		for id, expenses := range GroupBy(c.Expenses, func(e ExpenseDocument) string { return e.ProjectID }) {
			bucketFor(id).Expenses = expenses
		}
	}
	return buckets
}

// BucketFor returns the entity's bucket, or an empty one when it has no documents
func BucketFor(buckets map[string]*Bucket, kind EntityKind, id string) Bucket {
	if b, ok := buckets[id]; ok && b != nil {
		return *b
	}
	return Bucket{Kind: kind, EntityID: id}
}

// SortedKeys returns the bucket ids in ascending order
func SortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
