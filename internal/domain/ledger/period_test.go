package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func vendorBucket(c Collections, id string) Bucket {
	return BucketFor(BuildBuckets(EntityKindVendor, c), EntityKindVendor, id)
}

func TestComputePeriod_Scenario(t *testing.T) {
	b := vendorBucket(scenarioCollections(), "V1")

	totals := ComputePeriod(b, window(t, "2025-04-01", "2025-05-31"), TaxUpliftRate)

	assertDecimal(t, "100000", totals.OrderTotal)
	assertDecimal(t, "60000", totals.InvoicedTotal)
	assertDecimal(t, "60000", totals.PaidTotal)
	assertDecimal(t, "60000", totals.Outflow)
	assertDecimal(t, "60000", totals.InvoiceLineSums["O1"])
}

func TestComputePeriod_IndependentFilters(t *testing.T) {
	b := vendorBucket(scenarioCollections(), "V1")

	t.Run("invoice line counts while its order is out of window", func(t *testing.T) {
		totals := ComputePeriod(b, window(t, "2025-05-01", "2025-05-31"), TaxUpliftRate)
		assertDecimal(t, "0", totals.OrderTotal)
		assertDecimal(t, "60000", totals.InvoicedTotal)
		assertDecimal(t, "60000", totals.PaidTotal)
	})

	t.Run("order counts while its invoice line is out of window", func(t *testing.T) {
		totals := ComputePeriod(b, window(t, "2025-04-01", "2025-04-30"), TaxUpliftRate)
		assertDecimal(t, "100000", totals.OrderTotal)
		assertDecimal(t, "0", totals.InvoicedTotal)
		assertDecimal(t, "0", totals.PaidTotal)
		assert.Empty(t, totals.InvoiceLineSums)
	})

	t.Run("unbounded window includes undated documents", func(t *testing.T) {
		c := scenarioCollections()
		c.Payments = append(c.Payments, PaymentDocument{ID: "P2", VendorID: "V1", Amount: dec("10")})
		totals := ComputePeriod(vendorBucket(c, "V1"), Unbounded(), TaxUpliftRate)
		assertDecimal(t, "60010", totals.PaidTotal)

		bounded := ComputePeriod(vendorBucket(c, "V1"), window(t, "2025-01-01", "2025-12-31"), TaxUpliftRate)
		assertDecimal(t, "60000", bounded.PaidTotal)
	})

	t.Run("payment falls back to creation date", func(t *testing.T) {
		c := scenarioCollections()
		c.Payments[0].PaymentDate = ""
		totals := ComputePeriod(vendorBucket(c, "V1"), window(t, "2025-05-03", "2025-05-03"), TaxUpliftRate)
		assertDecimal(t, "60000", totals.PaidTotal)
	})
}

func TestComputePeriod_TaxUplift(t *testing.T) {
	c := Collections{Orders: []OrderDocument{
		{ID: "W1", Kind: OrderKindWork, VendorID: "V1", CreationDate: "2025-04-10", TotalAmount: dec("1000"), TaxApplicable: true},
		{ID: "W2", Kind: OrderKindWork, VendorID: "V1", CreationDate: "2025-04-10", TotalAmount: dec("1000")},
		{ID: "PO1", Kind: OrderKindPurchase, VendorID: "V1", CreationDate: "2025-04-10", TotalAmount: dec("1000"), TaxApplicable: true},
	}}

	totals := ComputePeriod(vendorBucket(c, "V1"), Unbounded(), TaxUpliftRate)

	assertDecimal(t, "3180", totals.OrderTotal)
}

func TestComputePeriod_ProjectCashFlow(t *testing.T) {
	c := scenarioCollections()
	c.Inflows = []InflowDocument{
		{ID: "I1", ProjectID: "PRJ1", Amount: dec("250000"), Date: "2025-04-15"},
		{ID: "I2", ProjectID: "PRJ1", Amount: dec("1000"), CreationDate: "2025-06-01"},
	}
	c.Expenses = []ExpenseDocument{
		{ID: "E1", ProjectID: "PRJ1", Amount: dec("1200"), Date: "2025-05-10"},
		{ID: "E2", ProjectID: "PRJ1", Amount: dec("75"), Date: "bad"},
	}
	b := BucketFor(BuildBuckets(EntityKindProject, c), EntityKindProject, "PRJ1")

	totals := ComputePeriod(b, window(t, "2025-04-01", "2025-05-31"), TaxUpliftRate)

	assertDecimal(t, "250000", totals.Inflow)
	assertDecimal(t, "60000", totals.PaymentOutflow)
	assertDecimal(t, "1200", totals.ExpenseOutflow)
	assertDecimal(t, "61200", totals.Outflow)
}

func TestComputePeriod_Additivity(t *testing.T) {
	c := scenarioCollections()
	c.Orders = append(c.Orders, OrderDocument{
		ID: "O2", Kind: OrderKindWork, VendorID: "V1", CreationDate: "2025-06-15T09:00:00Z",
		TotalAmount: dec("2500.50"), TaxApplicable: true,
		InvoiceLines: map[string]InvoiceLine{
			"2025-04-20": {Date: "2025-04-20", Amount: dec("700")},
			"2025-06-30": {Date: "2025-06-30 18:45:00", Amount: dec("1300.25")},
			"missing":    {Amount: dec("999")},
		},
	})
	c.Payments = append(c.Payments,
		PaymentDocument{ID: "P2", VendorID: "V1", Amount: dec("400"), CreationDate: "2025-04-30T23:59:59Z"},
		PaymentDocument{ID: "P3", VendorID: "V1", Amount: dec("900"), PaymentDate: "2025-06-01"},
		PaymentDocument{ID: "P4", VendorID: "V1", Amount: dec("5"), PaymentDate: "garbage"},
	)
	b := vendorBucket(c, "V1")

	partitions := [][][2]string{
		{{"2025-04-01", "2025-06-30"}},
		{{"2025-04-01", "2025-04-30"}, {"2025-05-01", "2025-06-30"}},
		{{"2025-04-01", "2025-04-30"}, {"2025-05-01", "2025-05-31"}, {"2025-06-01", "2025-06-30"}},
		{{"2025-04-01", "2025-04-10"}, {"2025-04-11", "2025-06-14"}, {"2025-06-15", "2025-06-30"}},
	}
	full := ComputePeriod(b, window(t, "2025-04-01", "2025-06-30"), TaxUpliftRate)

	for _, partition := range partitions {
		var sum PeriodTotals
		for _, bounds := range partition {
			sum = sum.Add(ComputePeriod(b, window(t, bounds[0], bounds[1]), TaxUpliftRate))
		}
		assertDecimal(t, full.OrderTotal.String(), sum.OrderTotal, "order total over %v", partition)
		assertDecimal(t, full.InvoicedTotal.String(), sum.InvoicedTotal, "invoiced over %v", partition)
		assertDecimal(t, full.PaidTotal.String(), sum.PaidTotal, "paid over %v", partition)
		assertDecimal(t, full.Inflow.String(), sum.Inflow, "inflow over %v", partition)
		assertDecimal(t, full.Outflow.String(), sum.Outflow, "outflow over %v", partition)
		for orderID, v := range full.InvoiceLineSums {
			assertDecimal(t, v.String(), sum.InvoiceLineSums[orderID], "line sums of %s over %v", orderID, partition)
		}
	}

	assertDecimal(t, "102950.59", full.OrderTotal)
	assertDecimal(t, "62000.25", full.InvoicedTotal)
	assertDecimal(t, "61300", full.PaidTotal)
}
