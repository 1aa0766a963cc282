package ledger

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Loader fetches collections from the document store into the engine
type Loader struct {
	store       ledger.DocumentStore
	engine      *Engine
	collections []ledger.CollectionName
	concurrency int
	metrics     *telemetry.LedgerMetrics
	logger      *zap.Logger
}

// LoaderOption is a functional option for configuring Loader
type LoaderOption func(*Loader)

// WithCollections restricts LoadAll to the given collections
func WithCollections(names ...ledger.CollectionName) LoaderOption {
	return func(l *Loader) {
		if len(names) > 0 {
			l.collections = names
		}
	}
}

// WithConcurrency caps the number of concurrent fetches
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLoaderMetrics records every collection load
func WithLoaderMetrics(m *telemetry.LedgerMetrics) LoaderOption {
	return func(l *Loader) {
		l.metrics = m
	}
}

// NewLoader creates a loader for every known collection
func NewLoader(store ledger.DocumentStore, engine *Engine, logger *zap.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loader{
		store:       store,
		engine:      engine,
		collections: ledger.AllCollections,
		concurrency: len(ledger.AllCollections),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches one full collection and installs it. On a store failure the
// collection is unloaded, never left stale, and an ErrUpstreamFetch is returned.
// There is no retry.
func (l *Loader) Load(ctx context.Context, name ledger.CollectionName) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger_loader", "load",
		telemetry.WithAttribute(telemetry.SpanAttrCollection, name.String()),
	)
	defer span.End()

	start := time.Now()
	records, err := l.store.Fetch(ctx, ledger.DefaultQuery(name))
	if err != nil {
		fetchErr := shared.ErrUpstreamFetch.WithDetail("collection %s", name).Wrap(err)
		l.engine.Unload(name, fetchErr)
		l.metrics.RecordLoad(ctx, name.String(), telemetry.LoadOutcomeFetchError, time.Since(start), 0)
		telemetry.RecordError(span, fetchErr)
		l.logger.Error("Collection fetch failed",
			zap.String("collection", name.String()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return fetchErr
	}

	if err := l.engine.Set(name, records); err != nil {
		l.metrics.RecordLoad(ctx, name.String(), telemetry.LoadOutcomeRejected, time.Since(start), 0)
		telemetry.RecordError(span, err)
		return err
	}
	l.metrics.RecordLoad(ctx, name.String(), telemetry.LoadOutcomeOK, time.Since(start), len(records))
	telemetry.SetAttribute(span, telemetry.SpanAttrRecordCount, len(records))
	l.logger.Debug("Collection fetched",
		zap.String("collection", name.String()),
		zap.Int("records", len(records)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// LoadAll fetches every configured collection concurrently. A failure in one
// collection does not stop the others; the first error is returned.
func (l *Loader) LoadAll(ctx context.Context) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger_loader", "load_all")
	defer span.End()

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for _, name := range l.collections {
		g.Go(func() error {
			return l.Load(ctx, name)
		})
	}
	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	l.logger.Info("All collections loaded",
		zap.Int("collections", len(l.collections)),
		zap.Uint64("version", l.engine.Snapshot().Version()),
	)
	return nil
}
