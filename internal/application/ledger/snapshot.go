package ledger

import (
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
)

// CollectionStatus describes one collection slot of a snapshot
type CollectionStatus struct {
	Name      ledger.CollectionName `json:"name"`
	Loaded    bool                  `json:"loaded"`
	Records   int                   `json:"records"`
	LoadedAt  *time.Time            `json:"loaded_at,omitempty"`
	LastError string                `json:"last_error,omitempty"`
}

type slot struct {
	records  int
	loadedAt time.Time
}

// Snapshot is an immutable view of the decoded collections. Every change
// produces a new Snapshot with a higher version.
type Snapshot struct {
	version uint64
	slots   map[ledger.CollectionName]slot
	errors  map[ledger.CollectionName]string

	vendors        []ledger.LedgerEntity
	projects       []ledger.LedgerEntity
	purchaseOrders []ledger.OrderDocument
	workOrders     []ledger.OrderDocument
	payments       []ledger.PaymentDocument
	inflows        []ledger.InflowDocument
	expenses       []ledger.ExpenseDocument
	attachments    []ledger.AttachmentDocument
}

// NewSnapshot returns an empty snapshot with nothing loaded
func NewSnapshot() *Snapshot {
	return &Snapshot{
		slots:  make(map[ledger.CollectionName]slot),
		errors: make(map[ledger.CollectionName]string),
	}
}

// Version increases on every replace or unload
func (s *Snapshot) Version() uint64 {
	return s.version
}

// IsLoaded reports whether the collection has arrived
func (s *Snapshot) IsLoaded(name ledger.CollectionName) bool {
	_, ok := s.slots[name]
	return ok
}

// Missing returns the names, in argument order, that are not loaded
func (s *Snapshot) Missing(names ...ledger.CollectionName) []string {
	var missing []string
	for _, name := range names {
		if !s.IsLoaded(name) {
			missing = append(missing, name.String())
		}
	}
	return missing
}

// Require returns a not-ready error when any of names is missing
func (s *Snapshot) Require(names ...ledger.CollectionName) error {
	if missing := s.Missing(names...); len(missing) > 0 {
		return shared.NotReady(missing)
	}
	return nil
}

// Collections exposes the decoded data. Purchase and work orders are merged.
func (s *Snapshot) Collections() ledger.Collections {
	orders := make([]ledger.OrderDocument, 0, len(s.purchaseOrders)+len(s.workOrders))
	orders = append(orders, s.purchaseOrders...)
	orders = append(orders, s.workOrders...)
	return ledger.Collections{
		Vendors:     s.vendors,
		Projects:    s.projects,
		Orders:      orders,
		Payments:    s.payments,
		Inflows:     s.inflows,
		Expenses:    s.expenses,
		Attachments: s.attachments,
	}
}

// Status lists every known collection in a fixed order
func (s *Snapshot) Status() []CollectionStatus {
	statuses := make([]CollectionStatus, 0, len(ledger.AllCollections))
	for _, name := range ledger.AllCollections {
		st := CollectionStatus{Name: name, LastError: s.errors[name]}
		if sl, ok := s.slots[name]; ok {
			loadedAt := sl.loadedAt
			st.Loaded = true
			st.Records = sl.records
			st.LoadedAt = &loadedAt
		}
		statuses = append(statuses, st)
	}
	return statuses
}

func (s *Snapshot) clone() *Snapshot {
	next := *s
	next.version = s.version + 1
	next.slots = make(map[ledger.CollectionName]slot, len(s.slots))
	for k, v := range s.slots {
		next.slots[k] = v
	}
	next.errors = make(map[ledger.CollectionName]string, len(s.errors))
	for k, v := range s.errors {
		next.errors[k] = v
	}
	return &next
}

// withRecords decodes records into a new snapshot that has name replaced
func (s *Snapshot) withRecords(name ledger.CollectionName, records []ledger.Record, now time.Time) (*Snapshot, error) {
	next := s.clone()
	var err error
	switch name {
	case ledger.CollectionVendors:
		next.vendors, err = ledger.DecodeEntities(ledger.EntityKindVendor, records)
	case ledger.CollectionProjects:
		next.projects, err = ledger.DecodeEntities(ledger.EntityKindProject, records)
	case ledger.CollectionPurchaseOrders:
		next.purchaseOrders, err = ledger.DecodeOrders(ledger.OrderKindPurchase, records)
	case ledger.CollectionWorkOrders:
		next.workOrders, err = ledger.DecodeOrders(ledger.OrderKindWork, records)
	case ledger.CollectionPayments:
		next.payments, err = ledger.DecodePayments(records)
	case ledger.CollectionInflows:
		next.inflows, err = ledger.DecodeInflows(records)
	case ledger.CollectionExpenses:
		next.expenses, err = ledger.DecodeExpenses(records)
	case ledger.CollectionAttachments:
		next.attachments, err = ledger.DecodeAttachments(records)
	default:
		return nil, shared.ErrInvalidInput.WithDetail("unknown collection %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	next.slots[name] = slot{records: len(records), loadedAt: now}
	delete(next.errors, name)
	return next, nil
}

// without returns a new snapshot where name is no longer loaded. A non-empty
// reason is kept for status reporting.
func (s *Snapshot) without(name ledger.CollectionName, reason string) *Snapshot {
	next := s.clone()
	delete(next.slots, name)
	if reason != "" {
		next.errors[name] = reason
	}
	switch name {
	case ledger.CollectionVendors:
		next.vendors = nil
	case ledger.CollectionProjects:
		next.projects = nil
	case ledger.CollectionPurchaseOrders:
		next.purchaseOrders = nil
	case ledger.CollectionWorkOrders:
		next.workOrders = nil
	case ledger.CollectionPayments:
		next.payments = nil
	case ledger.CollectionInflows:
		next.inflows = nil
	case ledger.CollectionExpenses:
		next.expenses = nil
	case ledger.CollectionAttachments:
		next.attachments = nil
	}
	return next
}
