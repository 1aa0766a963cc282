package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_Scenario(t *testing.T) {
	c := scenarioCollections()
	p := Params{
		Window:  window(t, "2025-04-01", "2025-05-31"),
		Epoch:   day("2025-04-01"),
		TaxRate: TaxUpliftRate,
	}

	fields := Calculate(c.Vendors[0], vendorBucket(c, "V1"), p)

	assert.Equal(t, "V1", fields.EntityID)
	assert.Equal(t, EntityKindVendor, fields.EntityKind)
	assertDecimal(t, "100000", fields.PeriodOrderTotal)
	assertDecimal(t, "60000", fields.PeriodInvoicedTotal)
	assertDecimal(t, "60000", fields.PeriodPaidTotal)
	assertDecimal(t, "60000", fields.PeriodOutflow)
	assertDecimal(t, "60000", fields.CreditDueTotal)
	assertDecimal(t, "60000", fields.CreditPaidTotal)
	assertDecimal(t, "0", fields.CumulativeBalance)
	assertDecimal(t, "0", fields.CurrentLiabilities)
}

func TestCalculate_RawNumbersInJSON(t *testing.T) {
	c := scenarioCollections()
	fields := Calculate(c.Vendors[0], vendorBucket(c, "V1"), Params{Epoch: day("2025-04-01"), TaxRate: TaxUpliftRate})

	raw, err := json.Marshal(fields)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "100000", decoded["period_order_total"])
	assert.Equal(t, "0", decoded["cumulative_balance"])
}

func TestCurrentLiabilities(t *testing.T) {
	orders := []OrderDocument{
		{ID: "O1", DeliveredAmount: dec("1000"), PaidAmount: dec("400")},
		{ID: "O2", DeliveredAmount: dec("500"), PaidAmount: dec("900")},
		{ID: "O3", DeliveredAmount: dec("250.50")},
		{ID: "O4"},
	}

	assertDecimal(t, "850.5", CurrentLiabilities(orders))
	assertDecimal(t, "0", CurrentLiabilities(nil))
}
