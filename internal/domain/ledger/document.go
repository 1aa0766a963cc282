package ledger

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// EntityKind identifies the unit of aggregation
type EntityKind string

const (
	EntityKindVendor  EntityKind = "VENDOR"
	EntityKindProject EntityKind = "PROJECT"
)

// IsValid checks if the kind is a known EntityKind
func (k EntityKind) IsValid() bool {
	switch k {
	case EntityKindVendor, EntityKindProject:
		return true
	}
	return false
}

// String returns the string representation of EntityKind
func (k EntityKind) String() string {
	return string(k)
}

// ParseEntityKind accepts "vendor"/"project" in any case, singular or plural
func ParseEntityKind(s string) (EntityKind, bool) {
	k := EntityKind(strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(s)), "S"))
	return k, k.IsValid()
}

// LedgerEntity is a vendor or project with its pre-epoch opening balances.
// It is a read-only snapshot for the duration of a report.
type LedgerEntity struct {
	ID                    string          `json:"id"`
	Kind                  EntityKind      `json:"kind"`
	Name                  string          `json:"name"`
	OpeningInvoiceBalance decimal.Decimal `json:"opening_invoice_balance"`
	OpeningPaymentBalance decimal.Decimal `json:"opening_payment_balance"`
}

// OrderKind distinguishes purchase orders from work/service orders
type OrderKind string

const (
	OrderKindPurchase OrderKind = "PURCHASE_ORDER"
	OrderKindWork     OrderKind = "WORK_ORDER"
)

// IsValid checks if the kind is a known OrderKind
func (k OrderKind) IsValid() bool {
	return k == OrderKindPurchase || k == OrderKindWork
}

// OrderStatus is the delivery lifecycle state of an order
type OrderStatus string

const (
	OrderStatusDraft              OrderStatus = "DRAFT"
	OrderStatusApproved           OrderStatus = "APPROVED"
	OrderStatusPartiallyDelivered OrderStatus = "PARTIALLY_DELIVERED"
	OrderStatusDelivered          OrderStatus = "DELIVERED"
	OrderStatusClosed             OrderStatus = "CLOSED"
	OrderStatusCancelled          OrderStatus = "CANCELLED"
)

// ParseOrderStatus normalizes free-form store values such as "Partially Delivered"
func ParseOrderStatus(s string) OrderStatus {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	return OrderStatus(normalized)
}

// HasDeliveries returns true for orders that have received goods or services
func (s OrderStatus) HasDeliveries() bool {
	return s == OrderStatusDelivered || s == OrderStatusPartiallyDelivered
}

// InvoiceLine is a single vendor invoice booked against an order
type InvoiceLine struct {
	DateKey              string               `json:"date_key"`
	OrderID              string               `json:"order_id"`
	InvoiceNo            string               `json:"invoice_no"`
	Date                 string               `json:"date"`
	Amount               decimal.Decimal      `json:"amount"`
	ReconciledAmount     decimal.Decimal      `json:"reconciled_amount"`
	ReconciliationStatus ReconciliationStatus `json:"reconciliation_status"`
	ReconciledDate       string               `json:"reconciled_date,omitempty"`
	ReconciledBy         string               `json:"reconciled_by,omitempty"`
	UploadedBy           string               `json:"uploaded_by,omitempty"`
	AttachmentID         string               `json:"attachment_id,omitempty"`
}

// OrderDocument is a purchase order or work order. It belongs to exactly one
// vendor and one project.
type OrderDocument struct {
	ID              string                 `json:"id"`
	Kind            OrderKind              `json:"kind"`
	VendorID        string                 `json:"vendor_id"`
	ProjectID       string                 `json:"project_id"`
	Number          string                 `json:"number"`
	Status          OrderStatus            `json:"status"`
	CreationDate    string                 `json:"creation_date"`
	TotalAmount     decimal.Decimal        `json:"total_amount"`
	TaxApplicable   bool                   `json:"tax_applicable"`
	InvoiceLines    map[string]InvoiceLine `json:"invoice_lines"`
	DeliveredAmount decimal.Decimal        `json:"delivered_amount"`
	PaidAmount      decimal.Decimal        `json:"paid_amount"`
}

// EntityKey returns the vendor or project id, depending on kind
func (o OrderDocument) EntityKey(kind EntityKind) string {
	if kind == EntityKindProject {
		return o.ProjectID
	}
	return o.VendorID
}

// OrderValue returns the order total, uplifted by rate for taxable work orders
func (o OrderDocument) OrderValue(rate decimal.Decimal) decimal.Decimal {
	if o.Kind == OrderKindWork && o.TaxApplicable {
		return o.TotalAmount.Mul(decimal.NewFromInt(1).Add(rate))
	}
	return o.TotalAmount
}

// SortedInvoiceLines returns the invoice lines ordered by date key then invoice number
func (o OrderDocument) SortedInvoiceLines() []InvoiceLine {
	lines := make([]InvoiceLine, 0, len(o.InvoiceLines))
	for key, line := range o.InvoiceLines {
		if line.DateKey == "" {
			line.DateKey = key
		}
		if line.OrderID == "" {
			line.OrderID = o.ID
		}
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].DateKey != lines[j].DateKey {
			return lines[i].DateKey < lines[j].DateKey
		}
		return lines[i].InvoiceNo < lines[j].InvoiceNo
	})
	return lines
}

// PaymentDocument is money paid out against a vendor and project
type PaymentDocument struct {
	ID                 string          `json:"id"`
	VendorID           string          `json:"vendor_id"`
	ProjectID          string          `json:"project_id"`
	Amount             decimal.Decimal `json:"amount"`
	PaymentDate        string          `json:"payment_date,omitempty"`
	CreationDate       string          `json:"creation_date"`
	LinkedDocumentID   string          `json:"linked_document_id,omitempty"`
	LinkedDocumentType string          `json:"linked_document_type,omitempty"`
}

// EffectiveDate returns the payment date, falling back to the creation date
func (p PaymentDocument) EffectiveDate() string {
	return EffectiveDate(p.PaymentDate, p.CreationDate)
}

// EntityKey returns the vendor or project id, depending on kind
func (p PaymentDocument) EntityKey(kind EntityKind) string {
	if kind == EntityKindProject {
		return p.ProjectID
	}
	return p.VendorID
}

// InflowDocument is money received by a project
type InflowDocument struct {
	ID           string          `json:"id"`
	ProjectID    string          `json:"project_id"`
	Amount       decimal.Decimal `json:"amount"`
	Date         string          `json:"date,omitempty"`
	CreationDate string          `json:"creation_date"`
	Description  string          `json:"description,omitempty"`
}

// EffectiveDate returns the inflow date, falling back to the creation date
func (i InflowDocument) EffectiveDate() string {
	return EffectiveDate(i.Date, i.CreationDate)
}

// ExpenseDocument is a non-order expense booked to a project
type ExpenseDocument struct {
	ID           string          `json:"id"`
	ProjectID    string          `json:"project_id"`
	Amount       decimal.Decimal `json:"amount"`
	Date         string          `json:"date,omitempty"`
	CreationDate string          `json:"creation_date"`
	Description  string          `json:"description,omitempty"`
}

// EffectiveDate returns the expense date, falling back to the creation date
func (e ExpenseDocument) EffectiveDate() string {
	return EffectiveDate(e.Date, e.CreationDate)
}

// AttachmentType is the kind of physical document scanned against an order
type AttachmentType string

const (
	AttachmentTypeDeliveryChallan  AttachmentType = "DELIVERY_CHALLAN"
	AttachmentTypeInspectionReport AttachmentType = "INSPECTION_REPORT"
)

// ParseAttachmentType accepts the canonical names and the short DC/MIR forms
func ParseAttachmentType(s string) (AttachmentType, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	switch normalized {
	case "DELIVERY_CHALLAN", "DC", "DELIVERYCHALLAN":
		return AttachmentTypeDeliveryChallan, true
	case "INSPECTION_REPORT", "MIR", "INSPECTIONREPORT", "MATERIAL_INSPECTION_REPORT":
		return AttachmentTypeInspectionReport, true
	}
	return AttachmentType(normalized), false
}

// AttachmentDocument is a delivery challan or inspection report tied to an order
type AttachmentDocument struct {
	ID                string         `json:"id"`
	AssociatedOrderID string         `json:"associated_order_id"`
	Type              AttachmentType `json:"type"`
	CreationDate      string         `json:"creation_date"`
	FileRef           string         `json:"file_ref,omitempty"`
}
