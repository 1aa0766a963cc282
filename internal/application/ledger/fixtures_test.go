package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is a DocumentStore backed by fixed records per collection
type memoryStore struct {
	mu       sync.Mutex
	records  map[ledger.CollectionName][]ledger.Record
	failures map[ledger.CollectionName]error
	queries  []ledger.CollectionQuery
}

func newMemoryStore(records map[ledger.CollectionName][]ledger.Record) *memoryStore {
	return &memoryStore{records: records, failures: make(map[ledger.CollectionName]error)}
}

func (m *memoryStore) Fetch(_ context.Context, q ledger.CollectionQuery) ([]ledger.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if err := m.failures[q.Name]; err != nil {
		return nil, err
	}
	return m.records[q.Name], nil
}

func (m *memoryStore) fail(name ledger.CollectionName, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[name] = err
}

var errConnectionRefused = errors.New("dial tcp 10.0.0.5:5432: connection refused")

// scenarioRecords is order O1 (created 2025-04-10, total 100000) with one
// fully reconciled invoice of 60000 and payment P1 of 60000, plus a work
// order W1 for a second vendor that is overpaid and missing challans.
func scenarioRecords() map[ledger.CollectionName][]ledger.Record {
	return map[ledger.CollectionName][]ledger.Record{
		ledger.CollectionVendors: {
			{"id": "V1", "name": "Acme Cement"},
			{"id": "V2", "name": "Bolt Electricals", "opening_invoice_balance": "1000", "opening_payment_balance": "250"},
		},
		ledger.CollectionProjects: {
			{"id": "PRJ1", "name": "Tower A"},
		},
		ledger.CollectionPurchaseOrders: {
			{
				"id": "O1", "vendor_id": "V1", "project_id": "PRJ1", "number": "PO-001", "status": "Delivered",
				"creation_date": "2025-04-10", "total_amount": "100000",
				"delivered_amount": "100000", "paid_amount": "60000",
				"invoice_lines": `{"2025-05-01":{"invoice_no":"INV-1","date":"2025-05-01","amount":"60000","reconciled_amount":"60000"}}`,
			},
		},
		ledger.CollectionWorkOrders: {
			{
				"id": "W1", "vendor_id": "V2", "project_id": "PRJ1", "number": "WO-001", "status": "PARTIALLY_DELIVERED",
				"creation_date": "2025-05-05", "total_amount": "10000", "tax_applicable": true,
				"invoice_lines": `{"2025-05-10":{"invoice_no":"B-1","date":"2025-05-10","amount":"5000","reconciled_amount":"2000"},` +
					`"2025-05-20":{"invoice_no":"B-2","date":"2025-05-20","amount":"4000"}}`,
			},
		},
		ledger.CollectionPayments: {
			{"id": "P1", "vendor_id": "V1", "project_id": "PRJ1", "amount": "60000", "payment_date": "2025-05-02", "creation_date": "2025-05-03", "linked_document_id": "O1"},
			{"id": "P2", "vendor_id": "V2", "project_id": "PRJ1", "amount": "12000", "creation_date": "2025-05-25", "linked_document_id": "W1"},
		},
		ledger.CollectionInflows: {
			{"id": "I1", "project_id": "PRJ1", "amount": "250000", "date": "2025-04-15"},
		},
		ledger.CollectionExpenses: {
			{"id": "E1", "project_id": "PRJ1", "amount": "1200", "creation_date": "2025-05-10"},
		},
		ledger.CollectionAttachments: {
			{"id": "A1", "associated_order_id": "O1", "type": "DELIVERY_CHALLAN"},
			{"id": "A2", "associated_order_id": "W1", "type": "DELIVERY_CHALLAN"},
			{"id": "A3", "associated_order_id": "W1", "type": "INSPECTION_REPORT"},
		},
	}
}

func loadedEngine(t *testing.T, except ...ledger.CollectionName) *Engine {
	t.Helper()
	skip := make(map[ledger.CollectionName]bool, len(except))
	for _, name := range except {
		skip[name] = true
	}
	e := NewEngine(nil)
	for name, records := range scenarioRecords() {
		if skip[name] {
			continue
		}
		require.NoError(t, e.Set(name, records))
	}
	return e
}

func window(t *testing.T, start, end string) ledger.DateWindow {
	t.Helper()
	w, err := ledger.NewDateWindow(start, end)
	require.NoError(t, err)
	return w
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}
