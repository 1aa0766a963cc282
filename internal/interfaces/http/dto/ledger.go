package dto

import (
	"time"

	appledger "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// WindowQuery is the optional reporting window shared by ledger endpoints
type WindowQuery struct {
	Start string `form:"start" binding:"omitempty,dateonly"`
	End   string `form:"end" binding:"omitempty,dateonly"`
}

// ReportQuery holds the report filters
type ReportQuery struct {
	WindowQuery
	Kind         string `form:"kind" binding:"omitempty,oneof=vendor vendors project projects VENDOR PROJECT"`
	EntityID     string `form:"entity_id" binding:"omitempty,max=128"`
	Status       string `form:"status" binding:"omitempty,oneof=FULL PARTIAL NONE NA full partial none na"`
	MismatchOnly bool   `form:"mismatch_only"`
}

// BalanceQuery bounds the epoch balance
type BalanceQuery struct {
	AsOf string `form:"as_of" binding:"omitempty,dateonly"`
}

// CalculatedFieldsResponse is the calculated fields of one entity and the
// window they were computed for
type CalculatedFieldsResponse struct {
	ledger.CalculatedFields
	Window WindowResponse `json:"window"`
}

// WindowResponse echoes the window a result was computed for
type WindowResponse struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// NewWindowResponse converts a domain window
func NewWindowResponse(w ledger.DateWindow) WindowResponse {
	return WindowResponse{Start: w.Start, End: w.End}
}

// PeriodResponse is the window totals of one entity
type PeriodResponse struct {
	EntityID        string                     `json:"entity_id"`
	EntityKind      ledger.EntityKind          `json:"entity_kind"`
	Window          WindowResponse             `json:"window"`
	OrderTotal      decimal.Decimal            `json:"order_total"`
	InvoicedTotal   decimal.Decimal            `json:"invoiced_total"`
	PaidTotal       decimal.Decimal            `json:"paid_total"`
	Inflow          decimal.Decimal            `json:"inflow"`
	Outflow         decimal.Decimal            `json:"outflow"`
	PaymentOutflow  decimal.Decimal            `json:"payment_outflow"`
	ExpenseOutflow  decimal.Decimal            `json:"expense_outflow"`
	InvoicedByOrder map[string]decimal.Decimal `json:"invoiced_by_order,omitempty"`
}

// NewPeriodResponse converts period totals
func NewPeriodResponse(kind ledger.EntityKind, id string, w ledger.DateWindow, p ledger.PeriodTotals) PeriodResponse {
	return PeriodResponse{
		EntityID:        id,
		EntityKind:      kind,
		Window:          NewWindowResponse(w),
		OrderTotal:      p.OrderTotal,
		InvoicedTotal:   p.InvoicedTotal,
		PaidTotal:       p.PaidTotal,
		Inflow:          p.Inflow,
		Outflow:         p.Outflow,
		PaymentOutflow:  p.PaymentOutflow,
		ExpenseOutflow:  p.ExpenseOutflow,
		InvoicedByOrder: p.InvoiceLineSums,
	}
}

// BalanceResponse is the epoch balance of one entity
type BalanceResponse struct {
	EntityID   string            `json:"entity_id"`
	EntityKind ledger.EntityKind `json:"entity_kind"`
	Epoch      time.Time         `json:"epoch"`
	AsOf       *time.Time        `json:"as_of,omitempty"`
	ledger.Balance
}

// OrderLinesResponse maps invoice line date keys to their bucket
type OrderLinesResponse struct {
	OrderID string                                 `json:"order_id"`
	Lines   map[string]ledger.ReconciliationBucket `json:"lines"`
}

// RefreshResponse reports a completed manual refresh
type RefreshResponse struct {
	Version  uint64 `json:"version"`
	Duration string `json:"duration"`
}

// StatusResponse describes what the engine currently holds
type StatusResponse struct {
	Version     uint64                       `json:"version"`
	Collections []appledger.CollectionStatus `json:"collections"`
	Cache       appledger.CacheStats         `json:"cache"`
	Refresh     *RefreshStatus               `json:"refresh,omitempty"`
}

// RefreshStatus describes the last scheduled or manual refresh
type RefreshStatus struct {
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
	Error     string    `json:"error,omitempty"`
}
