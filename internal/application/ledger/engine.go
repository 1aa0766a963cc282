package ledger

import (
	"sync"
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultEpoch is the fiscal-year start cumulative balances are computed from
var DefaultEpoch = time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

// Engine owns the current snapshot and memoized calculated fields.
// Computations run on the snapshot current at call time; replacing a
// collection never affects a computation already in flight.
type Engine struct {
	mu       sync.RWMutex
	snapshot *Snapshot
	cache    *resultCache
	epoch    time.Time
	taxRate  decimal.Decimal
	now      func() time.Time
	logger   *zap.Logger
}

// EngineOption is a functional option for configuring Engine
type EngineOption func(*Engine)

// WithEpoch sets the cumulative balance epoch
func WithEpoch(epoch time.Time) EngineOption {
	return func(e *Engine) {
		if !epoch.IsZero() {
			e.epoch = epoch
		}
	}
}

// WithTaxRate sets the uplift applied to taxable work orders
func WithTaxRate(rate decimal.Decimal) EngineOption {
	return func(e *Engine) {
		if !rate.IsNegative() {
			e.taxRate = rate
		}
	}
}

// WithClock overrides the clock used for load timestamps
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine with nothing loaded
func NewEngine(logger *zap.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		snapshot: NewSnapshot(),
		cache:    newResultCache(),
		epoch:    DefaultEpoch,
		taxRate:  ledger.TaxUpliftRate,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Epoch returns the configured balance epoch
func (e *Engine) Epoch() time.Time {
	return e.epoch
}

// TaxRate returns the configured work order uplift
func (e *Engine) TaxRate() decimal.Decimal {
	return e.taxRate
}

// Snapshot returns the current snapshot
func (e *Engine) Snapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}

// CacheStats returns the memoization counters
func (e *Engine) CacheStats() CacheStats {
	return e.cache.stats()
}

// Set replaces a collection with freshly fetched records. If the records
// cannot be decoded the collection is unloaded instead and the error returned.
func (e *Engine) Set(name ledger.CollectionName, records []ledger.Record) error {
	if !name.IsValid() {
		return shared.ErrInvalidInput.WithDetail("unknown collection %q", name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := e.snapshot.withRecords(name, records, e.now())
	if err != nil {
		e.install(e.snapshot.without(name, err.Error()))
		e.logger.Warn("Collection rejected",
			zap.String("collection", name.String()),
			zap.Error(err),
		)
		return err
	}
	e.install(next)
	e.logger.Info("Collection loaded",
		zap.String("collection", name.String()),
		zap.Int("records", len(records)),
		zap.Uint64("version", next.Version()),
	)
	return nil
}

// Unload marks a collection as not loaded, recording reason when non-nil
func (e *Engine) Unload(name ledger.CollectionName, reason error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	msg := ""
	if reason != nil {
		msg = reason.Error()
	}
	e.install(e.snapshot.without(name, msg))
	e.logger.Info("Collection unloaded",
		zap.String("collection", name.String()),
		zap.String("reason", msg),
	)
}

// install swaps in next and drops every memoized result. Callers hold mu.
func (e *Engine) install(next *Snapshot) {
	e.snapshot = next
	if dropped := e.cache.clear(); dropped > 0 {
		e.logger.Debug("Calculated fields cache cleared",
			zap.Int("entries", dropped),
			zap.Uint64("version", next.Version()),
		)
	}
}

func (e *Engine) params(w ledger.DateWindow) ledger.Params {
	return ledger.Params{Window: w, Epoch: e.epoch, TaxRate: e.taxRate}
}

// Recompute calculates every entity of kind on snapshot s. It is pure: the
// same snapshot and window always yield the same map.
func Recompute(s *Snapshot, kind ledger.EntityKind, p ledger.Params) (map[string]ledger.CalculatedFields, error) {
	if err := s.Require(ledger.RequiredCollections(kind)...); err != nil {
		return nil, err
	}
	c := s.Collections()
	buckets := ledger.BuildBuckets(kind, c)

	out := make(map[string]ledger.CalculatedFields)
	for _, entity := range c.Entities(kind) {
		if entity.ID == "" {
			continue
		}
		out[entity.ID] = ledger.Calculate(entity, ledger.BucketFor(buckets, kind, entity.ID), p)
	}
	return out, nil
}

// Recompute calculates every entity of kind for window w on the current snapshot
// and primes the cache with the results.
func (e *Engine) Recompute(kind ledger.EntityKind, w ledger.DateWindow) (map[string]ledger.CalculatedFields, error) {
	s := e.Snapshot()
	results, err := Recompute(s, kind, e.params(w))
	if err != nil {
		return nil, err
	}
	windowKey := w.Key()
	for id, fields := range results {
		e.cache.put(cacheKey{version: s.Version(), kind: kind, entityID: id, window: windowKey}, fields)
	}
	return results, nil
}

// GetCalculatedFields returns one entity's calculated fields for window w.
// It fails with a not-ready error while any dependency is missing, and with
// ErrNotFound for an unknown entity.
func (e *Engine) GetCalculatedFields(kind ledger.EntityKind, entityID string, w ledger.DateWindow) (ledger.CalculatedFields, error) {
	s := e.Snapshot()
	if err := s.Require(ledger.RequiredCollections(kind)...); err != nil {
		return ledger.CalculatedFields{}, err
	}

	key := cacheKey{version: s.Version(), kind: kind, entityID: entityID, window: w.Key()}
	if fields, ok := e.cache.get(key); ok {
		return fields, nil
	}

	c := s.Collections()
	entity, ok := c.FindEntity(kind, entityID)
	if !ok {
		return ledger.CalculatedFields{}, shared.ErrNotFound.WithDetail("%s %s", kind, entityID)
	}
	bucket := ledger.BucketFor(ledger.BuildBuckets(kind, c), kind, entityID)
	fields := ledger.Calculate(entity, bucket, e.params(w))
	e.cache.put(key, fields)
	return fields, nil
}

// ComputePeriod returns the window totals of one entity
func (e *Engine) ComputePeriod(kind ledger.EntityKind, entityID string, w ledger.DateWindow) (ledger.PeriodTotals, error) {
	s := e.Snapshot()
	if err := s.Require(ledger.RequiredCollections(kind)...); err != nil {
		return ledger.PeriodTotals{}, err
	}
	bucket := ledger.BucketFor(ledger.BuildBuckets(kind, s.Collections()), kind, entityID)
	return ledger.ComputePeriod(bucket, w, e.taxRate), nil
}

// ComputeBalance returns the epoch balance of one entity up to asOf (nil for no limit)
func (e *Engine) ComputeBalance(kind ledger.EntityKind, entityID string, asOf *time.Time) (ledger.Balance, error) {
	s := e.Snapshot()
	if err := s.Require(ledger.RequiredCollections(kind)...); err != nil {
		return ledger.Balance{}, err
	}
	c := s.Collections()
	entity, ok := c.FindEntity(kind, entityID)
	if !ok {
		return ledger.Balance{}, shared.ErrNotFound.WithDetail("%s %s", kind, entityID)
	}
	bucket := ledger.BucketFor(ledger.BuildBuckets(kind, c), kind, entityID)
	return ledger.ComputeBalance(entity, bucket, e.epoch, asOf), nil
}

// ClassifyOrderLines resolves the reconciliation bucket of every invoice line of an order
func (e *Engine) ClassifyOrderLines(orderID string) (map[string]ledger.ReconciliationBucket, error) {
	s := e.Snapshot()
	if err := s.Require(ledger.CollectionPurchaseOrders, ledger.CollectionWorkOrders); err != nil {
		return nil, err
	}
	order, ok := s.Collections().OrderIndex()[orderID]
	if !ok {
		return nil, shared.ErrNotFound.WithDetail("order %s", orderID)
	}
	out := make(map[string]ledger.ReconciliationBucket, len(order.InvoiceLines))
	for key, line := range order.InvoiceLines {
		out[key] = ledger.ClassifyLine(line)
	}
	return out, nil
}
