package ledger

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
)

// Errors surfaced by the ledger engine
var (
	ErrNotReady            = shared.ErrNotReady
	ErrMalformedCollection = shared.ErrMalformedCollection
)

// CollectionName names a collection in the external document store
type CollectionName string

const (
	CollectionVendors        CollectionName = "vendors"
	CollectionProjects       CollectionName = "projects"
	CollectionPurchaseOrders CollectionName = "purchase_orders"
	CollectionWorkOrders     CollectionName = "work_orders"
	CollectionPayments       CollectionName = "payments"
	CollectionInflows        CollectionName = "inflows"
	CollectionExpenses       CollectionName = "expenses"
	CollectionAttachments    CollectionName = "attachments"
)

// AllCollections lists every collection the engine consumes
var AllCollections = []CollectionName{
	CollectionVendors,
	CollectionProjects,
	CollectionPurchaseOrders,
	CollectionWorkOrders,
	CollectionPayments,
	CollectionInflows,
	CollectionExpenses,
	CollectionAttachments,
}

// IsValid checks if the name is a known collection
func (n CollectionName) IsValid() bool {
	for _, c := range AllCollections {
		if c == n {
			return true
		}
	}
	return false
}

// String returns the string representation of CollectionName
func (n CollectionName) String() string {
	return string(n)
}

// Field names shared across collections
const (
	FieldID           = "id"
	FieldName         = "name"
	FieldVendorID     = "vendor_id"
	FieldProjectID    = "project_id"
	FieldAmount       = "amount"
	FieldDate         = "date"
	FieldCreationDate = "creation_date"
	FieldInvoiceLines = "invoice_lines"
)

var (
	entityFields = []string{FieldID, FieldName, "opening_invoice_balance", "opening_payment_balance"}
	orderFields  = []string{
		FieldID, FieldVendorID, FieldProjectID, "number", "status", FieldCreationDate,
		"total_amount", "tax_applicable", FieldInvoiceLines, "delivered_amount", "paid_amount",
	}
	paymentFields = []string{
		FieldID, FieldVendorID, FieldProjectID, FieldAmount, "payment_date", FieldCreationDate,
		"linked_document_id", "linked_document_type",
	}
	cashFields       = []string{FieldID, FieldProjectID, FieldAmount, FieldDate, FieldCreationDate, "description"}
	attachmentFields = []string{FieldID, "associated_order_id", "type", FieldCreationDate, "file_ref"}
)

// CollectionFields is the field projection requested for each collection
var CollectionFields = map[CollectionName][]string{
	CollectionVendors:        entityFields,
	CollectionProjects:       entityFields,
	CollectionPurchaseOrders: orderFields,
	CollectionWorkOrders:     orderFields,
	CollectionPayments:       paymentFields,
	CollectionInflows:        cashFields,
	CollectionExpenses:       cashFields,
	CollectionAttachments:    attachmentFields,
}

// FilterOp is a comparison operator understood by the document store
type FilterOp string

const (
	OpEqual        FilterOp = "=="
	OpNotEqual     FilterOp = "!="
	OpLess         FilterOp = "<"
	OpLessEqual    FilterOp = "<="
	OpGreater      FilterOp = ">"
	OpGreaterEqual FilterOp = ">="
	OpIn           FilterOp = "in"
)

// IsValid checks if the operator is supported
func (op FilterOp) IsValid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpIn:
		return true
	}
	return false
}

// Filter restricts a query to records where Field Op Value holds
type Filter struct {
	Field string
	Op    FilterOp
	Value any
}

// OrderBy sorts query results by Field
type OrderBy struct {
	Field string
	Desc  bool
}

// CollectionQuery is a full-collection read: name, projection, filters, ordering.
// The engine never issues partial or streamed reads.
type CollectionQuery struct {
	Name    CollectionName
	Fields  []string
	Filters []Filter
	OrderBy []OrderBy
}

// DefaultQuery returns the projection the engine needs, ordered by id
func DefaultQuery(name CollectionName) CollectionQuery {
	return CollectionQuery{
		Name:    name,
		Fields:  CollectionFields[name],
		OrderBy: []OrderBy{{Field: FieldID}},
	}
}

// DocumentStore is the port to the external document store
type DocumentStore interface {
	Fetch(ctx context.Context, q CollectionQuery) ([]Record, error)
}

// RequiredCollections lists what must be loaded before computing
// calculated fields for entities of kind.
func RequiredCollections(kind EntityKind) []CollectionName {
	if kind == EntityKindProject {
		return []CollectionName{
			CollectionProjects,
			CollectionPurchaseOrders,
			CollectionWorkOrders,
			CollectionPayments,
			CollectionInflows,
			CollectionExpenses,
		}
	}
	return []CollectionName{
		CollectionVendors,
		CollectionPurchaseOrders,
		CollectionWorkOrders,
		CollectionPayments,
	}
}
