package ledger

import (
	"context"
	"sort"
	"strings"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultTolerance is the currency slack used by the pending-invoice and
// excess-payment predicates.
var DefaultTolerance = decimal.NewFromInt(100)

// ReportType selects the row shape and predicate of a report
type ReportType string

const (
	ReportTypeLedger                   ReportType = "LEDGER"
	ReportTypePendingInvoices          ReportType = "PENDING_INVOICES"
	ReportTypeExcessPayments           ReportType = "EXCESS_PAYMENTS"
	ReportTypeReconciliation2B         ReportType = "RECONCILIATION_2B"
	ReportTypeAttachmentReconciliation ReportType = "ATTACHMENT_RECONCILIATION"
)

// AllReportTypes lists the supported report types
var AllReportTypes = []ReportType{
	ReportTypeLedger,
	ReportTypePendingInvoices,
	ReportTypeExcessPayments,
	ReportTypeReconciliation2B,
	ReportTypeAttachmentReconciliation,
}

// IsValid checks if the report type is supported
func (t ReportType) IsValid() bool {
	for _, rt := range AllReportTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// String returns the string representation of ReportType
func (t ReportType) String() string {
	return string(t)
}

// ParseReportType accepts upper, lower or kebab case names, e.g. "excess-payments"
func ParseReportType(s string) (ReportType, bool) {
	t := ReportType(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	return t, t.IsValid()
}

// ReportRequest selects and filters one report
type ReportRequest struct {
	Type   ReportType
	Kind   ledger.EntityKind
	Window ledger.DateWindow
	// EntityID restricts order-level reports to one vendor or project
	EntityID string
	// Bucket restricts the 2B report to one reconciliation bucket
	Bucket ledger.ReconciliationBucket
	// MismatchOnly restricts the attachment report to mismatched orders
	MismatchOnly bool
}

// Report is an assembled report. Rows holds one of the row slice types below.
type Report struct {
	Type     ReportType                    `json:"type"`
	Kind     ledger.EntityKind             `json:"kind,omitempty"`
	Version  uint64                        `json:"version"`
	RowCount int                           `json:"row_count"`
	Rows     any                           `json:"rows"`
	Summary  *ledger.ReconciliationSummary `json:"summary,omitempty"`
}

// OrderBalanceRow is an order-level paid vs invoiced vs ordered comparison
type OrderBalanceRow struct {
	OrderID       string             `json:"order_id"`
	OrderNumber   string             `json:"order_number"`
	OrderKind     ledger.OrderKind   `json:"order_kind"`
	Status        ledger.OrderStatus `json:"status"`
	VendorID      string             `json:"vendor_id"`
	VendorName    string             `json:"vendor_name"`
	ProjectID     string             `json:"project_id"`
	ProjectName   string             `json:"project_name,omitempty"`
	CreationDate  string             `json:"creation_date"`
	OrderTotal    decimal.Decimal    `json:"order_total"`
	InvoicedTotal decimal.Decimal    `json:"invoiced_total"`
	PaidTotal     decimal.Decimal    `json:"paid_total"`
	// Difference is paid minus invoiced for pending invoices and paid minus
	// order total for excess payments
	Difference decimal.Decimal `json:"difference"`
}

// ReconciliationRow is one invoice line denormalized with its order and vendor
type ReconciliationRow struct {
	OrderID     string                      `json:"order_id"`
	OrderNumber string                      `json:"order_number"`
	VendorID    string                      `json:"vendor_id"`
	VendorName  string                      `json:"vendor_name"`
	ProjectID   string                      `json:"project_id"`
	Line        ledger.InvoiceLine          `json:"line"`
	Bucket      ledger.ReconciliationBucket `json:"bucket"`
	// PendingAmount is what is left to reconcile on this line
	PendingAmount decimal.Decimal `json:"pending_amount"`
}

// AttachmentRow is the document tally of one order
type AttachmentRow struct {
	ledger.AttachmentCounts
	OrderNumber string `json:"order_number"`
	VendorID    string `json:"vendor_id"`
	VendorName  string `json:"vendor_name"`
	ProjectID   string `json:"project_id"`
}

// PendingInvoicePredicate selects delivered orders paid ahead of invoicing
// by at least tolerance.
func PendingInvoicePredicate(tolerance decimal.Decimal) func(OrderBalanceRow) bool {
	return func(r OrderBalanceRow) bool {
		return r.Status.HasDeliveries() && r.PaidTotal.Sub(r.InvoicedTotal).GreaterThanOrEqual(tolerance)
	}
}

// ExcessPaymentPredicate selects delivered orders paid beyond their total plus tolerance
func ExcessPaymentPredicate(tolerance decimal.Decimal) func(OrderBalanceRow) bool {
	return func(r OrderBalanceRow) bool {
		return r.Status.HasDeliveries() && r.PaidTotal.GreaterThan(r.OrderTotal.Add(tolerance))
	}
}

// Assembler turns engine results into report rows
type Assembler struct {
	engine    *Engine
	tolerance decimal.Decimal
	metrics   *telemetry.LedgerMetrics
	logger    *zap.Logger
}

// AssemblerOption is a functional option for configuring Assembler
type AssemblerOption func(*Assembler)

// WithTolerance overrides DefaultTolerance
func WithTolerance(tolerance decimal.Decimal) AssemblerOption {
	return func(a *Assembler) {
		if !tolerance.IsNegative() {
			a.tolerance = tolerance
		}
	}
}

// WithReportMetrics records assembled reports and their row counts
func WithReportMetrics(m *telemetry.LedgerMetrics) AssemblerOption {
	return func(a *Assembler) {
		a.metrics = m
	}
}

// NewAssembler creates a report assembler over engine
func NewAssembler(engine *Engine, logger *zap.Logger, opts ...AssemblerOption) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Assembler{
		engine:    engine,
		tolerance: DefaultTolerance,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Tolerance returns the slack used by the order-level predicates
func (a *Assembler) Tolerance() decimal.Decimal {
	return a.tolerance
}

// RequiredFor lists the collections a report needs
func RequiredFor(t ReportType, kind ledger.EntityKind) []ledger.CollectionName {
	orders := []ledger.CollectionName{ledger.CollectionPurchaseOrders, ledger.CollectionWorkOrders, ledger.CollectionVendors}
	switch t {
	case ReportTypeLedger:
		return ledger.RequiredCollections(kind)
	case ReportTypePendingInvoices, ReportTypeExcessPayments:
		return append(orders, ledger.CollectionPayments)
	case ReportTypeAttachmentReconciliation:
		return append(orders, ledger.CollectionAttachments)
	default:
		return orders
	}
}

// Build assembles the requested report on the current snapshot
func (a *Assembler) Build(ctx context.Context, req ReportRequest) (*Report, error) {
	_, span := telemetry.StartServiceSpan(ctx, "ledger_report", "build",
		telemetry.WithAttribute(telemetry.SpanAttrReportType, req.Type.String()),
		telemetry.WithAttribute(telemetry.SpanAttrEntityKind, req.Kind.String()),
	)
	defer span.End()

	if !req.Type.IsValid() {
		err := shared.ErrInvalidInput.WithDetail("unknown report type %q", req.Type)
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Kind == "" {
		req.Kind = ledger.EntityKindVendor
	}
	if !req.Kind.IsValid() {
		err := shared.ErrInvalidInput.WithDetail("unknown entity kind %q", req.Kind)
		telemetry.RecordError(span, err)
		return nil, err
	}

	s := a.engine.Snapshot()
	if err := s.Require(RequiredFor(req.Type, req.Kind)...); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	report := &Report{Type: req.Type, Kind: req.Kind, Version: s.Version()}
	switch req.Type {
	case ReportTypeLedger:
		rows, err := a.ledgerRows(req)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		report.Rows, report.RowCount = rows, len(rows)
	case ReportTypePendingInvoices:
		rows := a.orderRows(s, req, PendingInvoicePredicate(a.tolerance), func(r OrderBalanceRow) decimal.Decimal {
			return r.PaidTotal.Sub(r.InvoicedTotal)
		})
		report.Rows, report.RowCount = rows, len(rows)
	case ReportTypeExcessPayments:
		rows := a.orderRows(s, req, ExcessPaymentPredicate(a.tolerance), func(r OrderBalanceRow) decimal.Decimal {
			return r.PaidTotal.Sub(r.OrderTotal)
		})
		report.Rows, report.RowCount = rows, len(rows)
	case ReportTypeReconciliation2B:
		rows, summary := reconciliationRows(s, req)
		report.Rows, report.RowCount, report.Summary = rows, len(rows), &summary
	case ReportTypeAttachmentReconciliation:
		rows := attachmentRows(s, req)
		report.Rows, report.RowCount = rows, len(rows)
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrRowCount, report.RowCount)
	a.metrics.RecordReport(ctx, req.Type.String(), report.RowCount)
	a.logger.Debug("Report assembled",
		zap.String("type", req.Type.String()),
		zap.String("kind", req.Kind.String()),
		zap.Int("rows", report.RowCount),
		zap.Uint64("version", report.Version),
	)
	return report, nil
}

func (a *Assembler) ledgerRows(req ReportRequest) ([]ledger.CalculatedFields, error) {
	results, err := a.engine.Recompute(req.Kind, req.Window)
	if err != nil {
		return nil, err
	}
	rows := make([]ledger.CalculatedFields, 0, len(results))
	for _, id := range ledger.SortedKeys(results) {
		if req.EntityID != "" && id != req.EntityID {
			continue
		}
		rows = append(rows, results[id])
	}
	return rows, nil
}

func entityNames(entities []ledger.LedgerEntity) map[string]string {
	names := make(map[string]string, len(entities))
	for _, e := range entities {
		names[e.ID] = e.Name
	}
	return names
}

func sortedOrders(c ledger.Collections) []ledger.OrderDocument {
	orders := append([]ledger.OrderDocument(nil), c.Orders...)
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders
}

// orderRows builds one OrderBalanceRow per order and keeps those matching keep.
// Paid is the sum of in-window payments linked to the order; invoiced is the
// sum of its in-window invoice lines; the order total is never windowed.
func (a *Assembler) orderRows(
	s *Snapshot,
	req ReportRequest,
	keep func(OrderBalanceRow) bool,
	difference func(OrderBalanceRow) decimal.Decimal,
) []OrderBalanceRow {
	c := s.Collections()
	vendors := entityNames(c.Vendors)
	projects := entityNames(c.Projects)
	linked := ledger.GroupBy(c.Payments, func(p ledger.PaymentDocument) string { return p.LinkedDocumentID })

	rows := make([]OrderBalanceRow, 0)
	for _, o := range sortedOrders(c) {
		if req.EntityID != "" && o.EntityKey(req.Kind) != req.EntityID {
			continue
		}
		paid := decimal.Zero
		for _, p := range linked[o.ID] {
			if req.Window.Contains(p.EffectiveDate()) {
				paid = paid.Add(p.Amount)
			}
		}
		invoiced := decimal.Zero
		for _, line := range o.InvoiceLines {
			if req.Window.Contains(line.Date) {
				invoiced = invoiced.Add(line.Amount)
			}
		}
		row := OrderBalanceRow{
			OrderID:       o.ID,
			OrderNumber:   o.Number,
			OrderKind:     o.Kind,
			Status:        o.Status,
			VendorID:      o.VendorID,
			VendorName:    vendors[o.VendorID],
			ProjectID:     o.ProjectID,
			ProjectName:   projects[o.ProjectID],
			CreationDate:  o.CreationDate,
			OrderTotal:    o.OrderValue(a.engine.TaxRate()),
			InvoicedTotal: invoiced,
			PaidTotal:     paid,
		}
		if !keep(row) {
			continue
		}
		row.Difference = difference(row)
		rows = append(rows, row)
	}
	return rows
}

// reconciliationRows lists in-window invoice lines, optionally of one bucket,
// and summarizes the listed lines.
func reconciliationRows(s *Snapshot, req ReportRequest) ([]ReconciliationRow, ledger.ReconciliationSummary) {
	c := s.Collections()
	vendors := entityNames(c.Vendors)

	rows := make([]ReconciliationRow, 0)
	lines := make([]ledger.InvoiceLine, 0)
	for _, o := range sortedOrders(c) {
		if req.EntityID != "" && o.EntityKey(req.Kind) != req.EntityID {
			continue
		}
		for _, line := range o.SortedInvoiceLines() {
			if !req.Window.Contains(line.Date) {
				continue
			}
			bucket := ledger.ClassifyLine(line)
			if req.Bucket != "" && bucket != req.Bucket {
				continue
			}
			rows = append(rows, ReconciliationRow{
				OrderID:       o.ID,
				OrderNumber:   o.Number,
				VendorID:      o.VendorID,
				VendorName:    vendors[o.VendorID],
				ProjectID:     o.ProjectID,
				Line:          line,
				Bucket:        bucket,
				PendingAmount: pendingAmount(line, bucket),
			})
			lines = append(lines, line)
		}
	}
	return rows, ledger.SummarizeReconciliation(lines)
}

func pendingAmount(line ledger.InvoiceLine, bucket ledger.ReconciliationBucket) decimal.Decimal {
	switch bucket {
	case ledger.ReconciliationBucketNone:
		return line.Amount
	case ledger.ReconciliationBucketPartial:
		return line.Amount.Sub(line.ReconciledAmount)
	default:
		return decimal.Zero
	}
}

// attachmentRows lists per-order document counts. The window applies to the
// order creation date.
func attachmentRows(s *Snapshot, req ReportRequest) []AttachmentRow {
	c := s.Collections()
	vendors := entityNames(c.Vendors)
	counts := ledger.CountAttachments(c.Orders, c.Attachments)
	keep := ledger.MismatchFilter(req.MismatchOnly)

	rows := make([]AttachmentRow, 0)
	for _, o := range sortedOrders(c) {
		if req.EntityID != "" && o.EntityKey(req.Kind) != req.EntityID {
			continue
		}
		if !req.Window.Contains(o.CreationDate) {
			continue
		}
		oc := counts[o.ID]
		if !keep(oc) {
			continue
		}
		rows = append(rows, AttachmentRow{
			AttachmentCounts: oc,
			OrderNumber:      o.Number,
			VendorID:         o.VendorID,
			VendorName:       vendors[o.VendorID],
			ProjectID:        o.ProjectID,
		})
	}
	return rows
}
