package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportType(t *testing.T) {
	tests := []struct {
		input string
		want  ReportType
		ok    bool
	}{
		{"LEDGER", ReportTypeLedger, true},
		{"ledger", ReportTypeLedger, true},
		{"excess-payments", ReportTypeExcessPayments, true},
		{"pending_invoices", ReportTypePendingInvoices, true},
		{"reconciliation-2b", ReportTypeReconciliation2B, true},
		{"attachment-reconciliation", ReportTypeAttachmentReconciliation, true},
		{"cash-flow", "CASH_FLOW", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseReportType(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestOrderPredicates(t *testing.T) {
	tolerance := decimal.NewFromInt(100)
	row := func(status ledger.OrderStatus, total, invoiced, paid int64) OrderBalanceRow {
		return OrderBalanceRow{
			Status:        status,
			OrderTotal:    decimal.NewFromInt(total),
			InvoicedTotal: decimal.NewFromInt(invoiced),
			PaidTotal:     decimal.NewFromInt(paid),
		}
	}

	t.Run("pending invoices", func(t *testing.T) {
		pending := PendingInvoicePredicate(tolerance)
		assert.True(t, pending(row(ledger.OrderStatusDelivered, 1000, 500, 600)))
		assert.False(t, pending(row(ledger.OrderStatusDelivered, 1000, 500, 599)))
		assert.True(t, pending(row(ledger.OrderStatusPartiallyDelivered, 1000, 0, 100)))
		assert.False(t, pending(row(ledger.OrderStatusApproved, 1000, 0, 900)))
	})

	t.Run("excess payments", func(t *testing.T) {
		excess := ExcessPaymentPredicate(tolerance)
		assert.True(t, excess(row(ledger.OrderStatusDelivered, 1000, 0, 1101)))
		assert.False(t, excess(row(ledger.OrderStatusDelivered, 1000, 0, 1100)))
		assert.False(t, excess(row(ledger.OrderStatusClosed, 1000, 0, 5000)))
	})
}

func TestAssembler_Options(t *testing.T) {
	e := NewEngine(nil)
	assert.True(t, DefaultTolerance.Equal(NewAssembler(e, nil).Tolerance()))
	assertDecimal(t, "500", NewAssembler(e, nil, WithTolerance(decimal.NewFromInt(500))).Tolerance())
	assertDecimal(t, "100", NewAssembler(e, nil, WithTolerance(decimal.NewFromInt(-1))).Tolerance())
}

func TestAssembler_Ledger(t *testing.T) {
	a := NewAssembler(loadedEngine(t), nil)

	report, err := a.Build(context.Background(), ReportRequest{Type: ReportTypeLedger, Window: window(t, "2025-04-01", "2025-05-31")})
	require.NoError(t, err)

	assert.Equal(t, ledger.EntityKindVendor, report.Kind)
	rows, ok := report.Rows.([]ledger.CalculatedFields)
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, "V1", rows[0].EntityID)
	assert.Equal(t, "V2", rows[1].EntityID)
	assertDecimal(t, "0", rows[0].CumulativeBalance)

	t.Run("project ledger", func(t *testing.T) {
		report, err := a.Build(context.Background(), ReportRequest{Type: ReportTypeLedger, Kind: ledger.EntityKindProject})
		require.NoError(t, err)
		assert.Equal(t, 1, report.RowCount)
	})

	t.Run("single entity", func(t *testing.T) {
		report, err := a.Build(context.Background(), ReportRequest{Type: ReportTypeLedger, EntityID: "V2"})
		require.NoError(t, err)
		assert.Equal(t, 1, report.RowCount)
	})
}

func TestAssembler_PendingInvoices(t *testing.T) {
	a := NewAssembler(loadedEngine(t), nil)

	report, err := a.Build(context.Background(), ReportRequest{Type: ReportTypePendingInvoices})
	require.NoError(t, err)

	rows := report.Rows.([]OrderBalanceRow)
	require.Len(t, rows, 1)
	assert.Equal(t, "W1", rows[0].OrderID)
	assert.Equal(t, "Bolt Electricals", rows[0].VendorName)
	assert.Equal(t, "Tower A", rows[0].ProjectName)
	assertDecimal(t, "12000", rows[0].PaidTotal)
	assertDecimal(t, "9000", rows[0].InvoicedTotal)
	assertDecimal(t, "3000", rows[0].Difference)

	t.Run("window excludes the late payment", func(t *testing.T) {
		report, err := a.Build(context.Background(), ReportRequest{Type: ReportTypePendingInvoices, Window: window(t, "2025-05-01", "2025-05-20")})
		require.NoError(t, err)
		assert.Equal(t, 0, report.RowCount)
	})

	t.Run("entity filter", func(t *testing.T) {
		report, err := a.Build(context.Background(), ReportRequest{Type: ReportTypePendingInvoices, EntityID: "V1"})
		require.NoError(t, err)
		assert.Equal(t, 0, report.RowCount)
	})
}

func TestAssembler_ExcessPayments(t *testing.T) {
	e := loadedEngine(t)

	report, err := NewAssembler(e, nil).Build(context.Background(), ReportRequest{Type: ReportTypeExcessPayments})
	require.NoError(t, err)
	rows := report.Rows.([]OrderBalanceRow)
	require.Len(t, rows, 1)
	assert.Equal(t, "W1", rows[0].OrderID)
	assertDecimal(t, "11800", rows[0].OrderTotal)
	assertDecimal(t, "200", rows[0].Difference)

	t.Run("tolerance is a parameter", func(t *testing.T) {
		report, err := NewAssembler(e, nil, WithTolerance(decimal.NewFromInt(500))).Build(context.Background(), ReportRequest{Type: ReportTypeExcessPayments})
		require.NoError(t, err)
		assert.Equal(t, 0, report.RowCount)
	})
}

func TestAssembler_Reconciliation2B(t *testing.T) {
	a := NewAssembler(loadedEngine(t), nil)

	report, err := a.Build(context.Background(), ReportRequest{Type: ReportTypeReconciliation2B})
	require.NoError(t, err)

	rows := report.Rows.([]ReconciliationRow)
	require.Len(t, rows, 3)
	assert.Equal(t, ledger.ReconciliationBucketFull, rows[0].Bucket)
	assert.Equal(t, "Acme Cement", rows[0].VendorName)
	assert.Equal(t, ledger.ReconciliationBucketPartial, rows[1].Bucket)
	assertDecimal(t, "3000", rows[1].PendingAmount)
	assert.Equal(t, ledger.ReconciliationBucketNone, rows[2].Bucket)

	require.NotNil(t, report.Summary)
	assertDecimal(t, "62000", report.Summary.ReconciledAmount)
	assertDecimal(t, "7000", report.Summary.PendingReconciliationAmount)

	t.Run("bucket filter", func(t *testing.T) {
		report, err := a.Build(context.Background(), ReportRequest{Type: ReportTypeReconciliation2B, Bucket: ledger.ReconciliationBucketPartial})
		require.NoError(t, err)
		assert.Equal(t, 1, report.RowCount)
		assert.Equal(t, 1, report.Summary.TotalLines)
		assertDecimal(t, "3000", report.Summary.PendingReconciliationAmount)
	})

	t.Run("window filters lines by their own date", func(t *testing.T) {
		report, err := a.Build(context.Background(), ReportRequest{Type: ReportTypeReconciliation2B, Window: window(t, "2025-05-15", "")})
		require.NoError(t, err)
		assert.Equal(t, 1, report.RowCount)
	})
}

func TestAssembler_AttachmentReconciliation(t *testing.T) {
	a := NewAssembler(loadedEngine(t), nil)

	report, err := a.Build(context.Background(), ReportRequest{Type: ReportTypeAttachmentReconciliation})
	require.NoError(t, err)
	rows := report.Rows.([]AttachmentRow)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].IsMismatched)
	assert.Equal(t, "W1", rows[1].OrderID)
	assert.Equal(t, 2, rows[1].InvoiceCount)
	assert.Equal(t, 1, rows[1].DCCount)
	assert.Equal(t, 1, rows[1].MIRCount)
	assert.True(t, rows[1].IsMismatched)

	t.Run("mismatch only", func(t *testing.T) {
		report, err := a.Build(context.Background(), ReportRequest{Type: ReportTypeAttachmentReconciliation, MismatchOnly: true})
		require.NoError(t, err)
		rows := report.Rows.([]AttachmentRow)
		require.Len(t, rows, 1)
		assert.Equal(t, "W1", rows[0].OrderID)
	})
}

func TestAssembler_Errors(t *testing.T) {
	t.Run("unknown report type", func(t *testing.T) {
		_, err := NewAssembler(loadedEngine(t), nil).Build(context.Background(), ReportRequest{Type: "CASH_FLOW"})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := NewAssembler(loadedEngine(t), nil).Build(context.Background(), ReportRequest{Type: ReportTypeLedger, Kind: "CUSTOMER"})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	for _, rt := range AllReportTypes {
		for _, missing := range RequiredFor(rt, ledger.EntityKindVendor) {
			t.Run(rt.String()+" without "+missing.String(), func(t *testing.T) {
				_, err := NewAssembler(loadedEngine(t, missing), nil).Build(context.Background(), ReportRequest{Type: rt})
				assert.True(t, shared.IsNotReady(err))
			})
		}
	}
}
