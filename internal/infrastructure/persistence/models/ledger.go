package models

import (
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// TablePrefix is prepended to every collection name to form its table
const TablePrefix = "ledger_"

// TableFor returns the table backing a collection
func TableFor(name ledger.CollectionName) string {
	return TablePrefix + string(name)
}

// EntityModel holds the columns shared by vendors and projects
type EntityModel struct {
	ID                    string          `gorm:"column:id;type:varchar(64);primaryKey"`
	Name                  string          `gorm:"column:name;type:varchar(200);not null;default:''"`
	OpeningInvoiceBalance decimal.Decimal `gorm:"column:opening_invoice_balance;type:decimal(18,2);not null;default:0"`
	OpeningPaymentBalance decimal.Decimal `gorm:"column:opening_payment_balance;type:decimal(18,2);not null;default:0"`
}

// VendorModel is the persistence model for the vendors collection
type VendorModel struct {
	EntityModel
}

// TableName returns the table name for GORM
func (VendorModel) TableName() string { return TableFor(ledger.CollectionVendors) }

// ProjectModel is the persistence model for the projects collection
type ProjectModel struct {
	EntityModel
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string { return TableFor(ledger.CollectionProjects) }

// OrderModel holds the columns shared by purchase and work orders.
// InvoiceLines is a JSON object keyed by date key.
type OrderModel struct {
	ID              string          `gorm:"column:id;type:varchar(64);primaryKey"`
	VendorID        string          `gorm:"column:vendor_id;type:varchar(64);not null;default:'';index"`
	ProjectID       string          `gorm:"column:project_id;type:varchar(64);not null;default:'';index"`
	Number          string          `gorm:"column:number;type:varchar(64);not null;default:''"`
	Status          string          `gorm:"column:status;type:varchar(32);not null;default:''"`
	CreationDate    string          `gorm:"column:creation_date;type:varchar(40);not null;default:''"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:decimal(18,2);not null;default:0"`
	TaxApplicable   bool            `gorm:"column:tax_applicable;not null;default:false"`
	InvoiceLines    string          `gorm:"column:invoice_lines;type:text"`
	DeliveredAmount decimal.Decimal `gorm:"column:delivered_amount;type:decimal(18,2);not null;default:0"`
	PaidAmount      decimal.Decimal `gorm:"column:paid_amount;type:decimal(18,2);not null;default:0"`
}

// PurchaseOrderModel is the persistence model for the purchase_orders collection
type PurchaseOrderModel struct {
	OrderModel
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string { return TableFor(ledger.CollectionPurchaseOrders) }

// WorkOrderModel is the persistence model for the work_orders collection
type WorkOrderModel struct {
	OrderModel
}

// TableName returns the table name for GORM
func (WorkOrderModel) TableName() string { return TableFor(ledger.CollectionWorkOrders) }

// PaymentModel is the persistence model for the payments collection
type PaymentModel struct {
	ID                 string          `gorm:"column:id;type:varchar(64);primaryKey"`
	VendorID           string          `gorm:"column:vendor_id;type:varchar(64);not null;default:'';index"`
	ProjectID          string          `gorm:"column:project_id;type:varchar(64);not null;default:'';index"`
	Amount             decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null;default:0"`
	PaymentDate        string          `gorm:"column:payment_date;type:varchar(40);not null;default:''"`
	CreationDate       string          `gorm:"column:creation_date;type:varchar(40);not null;default:''"`
	LinkedDocumentID   string          `gorm:"column:linked_document_id;type:varchar(64);not null;default:'';index"`
	LinkedDocumentType string          `gorm:"column:linked_document_type;type:varchar(32);not null;default:''"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string { return TableFor(ledger.CollectionPayments) }

// CashModel holds the columns shared by project inflows and expenses
type CashModel struct {
	ID           string          `gorm:"column:id;type:varchar(64);primaryKey"`
	ProjectID    string          `gorm:"column:project_id;type:varchar(64);not null;default:'';index"`
	Amount       decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null;default:0"`
	Date         string          `gorm:"column:date;type:varchar(40);not null;default:''"`
	CreationDate string          `gorm:"column:creation_date;type:varchar(40);not null;default:''"`
	Description  string          `gorm:"column:description;type:text"`
}

// InflowModel is the persistence model for the inflows collection
type InflowModel struct {
	CashModel
}

// TableName returns the table name for GORM
func (InflowModel) TableName() string { return TableFor(ledger.CollectionInflows) }

// ExpenseModel is the persistence model for the expenses collection
type ExpenseModel struct {
	CashModel
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string { return TableFor(ledger.CollectionExpenses) }

// AttachmentModel is the persistence model for the attachments collection.
// Only metadata is stored; FileRef points at the file elsewhere.
type AttachmentModel struct {
	ID                string `gorm:"column:id;type:varchar(64);primaryKey"`
	AssociatedOrderID string `gorm:"column:associated_order_id;type:varchar(64);not null;default:'';index"`
	Type              string `gorm:"column:type;type:varchar(32);not null;default:''"`
	CreationDate      string `gorm:"column:creation_date;type:varchar(40);not null;default:''"`
	FileRef           string `gorm:"column:file_ref;type:varchar(500);not null;default:''"`
}

// TableName returns the table name for GORM
func (AttachmentModel) TableName() string { return TableFor(ledger.CollectionAttachments) }

// AllModels returns every ledger model, in collection order
func AllModels() []any {
	return []any{
		&VendorModel{},
		&ProjectModel{},
		&PurchaseOrderModel{},
		&WorkOrderModel{},
		&PaymentModel{},
		&InflowModel{},
		&ExpenseModel{},
		&AttachmentModel{},
	}
}
