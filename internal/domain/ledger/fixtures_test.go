package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func window(t *testing.T, start, end string) DateWindow {
	t.Helper()
	w, err := NewDateWindow(start, end)
	require.NoError(t, err)
	return w
}

// scenarioCollections is order O1 with one fully reconciled invoice line and
// the payment P1 that settles it.
func scenarioCollections() Collections {
	return Collections{
		Vendors: []LedgerEntity{{ID: "V1", Kind: EntityKindVendor, Name: "Acme Cement"}},
		Projects: []LedgerEntity{{ID: "PRJ1", Kind: EntityKindProject, Name: "Tower A"}},
		Orders: []OrderDocument{
			{
				ID:           "O1",
				Kind:         OrderKindPurchase,
				VendorID:     "V1",
				ProjectID:    "PRJ1",
				Status:       OrderStatusDelivered,
				CreationDate: "2025-04-10",
				TotalAmount:  dec("100000"),
				InvoiceLines: map[string]InvoiceLine{
					"2025-05-01": {
						InvoiceNo:        "INV-1",
						Date:             "2025-05-01",
						Amount:           dec("60000"),
						ReconciledAmount: dec("60000"),
					},
				},
			},
		},
		Payments: []PaymentDocument{
			{ID: "P1", VendorID: "V1", ProjectID: "PRJ1", Amount: dec("60000"), PaymentDate: "2025-05-02", CreationDate: "2025-05-03"},
		},
	}
}
