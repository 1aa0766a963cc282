package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ExportInterval    time.Duration
	ServiceName       string
	ServiceVersion    string
	Insecure          bool
}

// MeterProvider wraps the SDK meter provider with lifecycle management
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
	config   MetricsConfig
}

// NewMeterProvider creates and installs an OTLP/gRPC meter provider with a
// periodic reader. When metrics are disabled the global no-op meter is used.
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger, config: cfg}
	if !cfg.Enabled {
		logger.Info("Metrics disabled, using no-op meter provider")
		return mp, nil
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = 60 * time.Second
	}

	exporterOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
	)
	return mp, nil
}

// Meter returns a named meter, falling back to the global provider when disabled
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// IsEnabled returns whether metrics are exported
func (mp *MeterProvider) IsEnabled() bool {
	return mp.config.Enabled && mp.provider != nil
}

// Shutdown flushes pending metrics and stops the provider
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		mp.logger.Error("Error shutting down meter provider", zap.Error(err))
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// Load outcomes recorded on the collection load counter
const (
	LoadOutcomeOK         = "ok"
	LoadOutcomeFetchError = "fetch_error"
	LoadOutcomeRejected   = "rejected"
)

// Metric attribute keys
var (
	AttrCollection = attribute.Key("collection")
	AttrOutcome    = attribute.Key("outcome")
	AttrReportType = attribute.Key("report_type")
)

// FetchDurationBuckets are histogram boundaries for collection fetches, in seconds
var FetchDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// LedgerMetrics holds the instruments recorded by the loader and report
// assembler. A nil *LedgerMetrics records nothing.
type LedgerMetrics struct {
	loads         metric.Int64Counter
	fetchDuration metric.Float64Histogram
	records       metric.Int64Gauge
	reports       metric.Int64Counter
	reportRows    metric.Int64Histogram
}

// NewLedgerMetrics registers the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	m := &LedgerMetrics{}
	var err error

	if m.loads, err = meter.Int64Counter("ledger.collection.loads",
		metric.WithDescription("Collection load attempts by outcome"),
		metric.WithUnit("{load}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create counter ledger.collection.loads: %w", err)
	}
	if m.fetchDuration, err = meter.Float64Histogram("ledger.collection.fetch.duration",
		metric.WithDescription("Time spent fetching one collection from the document store"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(FetchDurationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create histogram ledger.collection.fetch.duration: %w", err)
	}
	if m.records, err = meter.Int64Gauge("ledger.collection.records",
		metric.WithDescription("Records in the currently loaded collection"),
		metric.WithUnit("{record}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create gauge ledger.collection.records: %w", err)
	}
	if m.reports, err = meter.Int64Counter("ledger.reports",
		metric.WithDescription("Reports assembled by type"),
		metric.WithUnit("{report}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create counter ledger.reports: %w", err)
	}
	if m.reportRows, err = meter.Int64Histogram("ledger.report.rows",
		metric.WithDescription("Rows per assembled report"),
		metric.WithUnit("{row}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create histogram ledger.report.rows: %w", err)
	}
	return m, nil
}

// RecordLoad records one collection load attempt
func (m *LedgerMetrics) RecordLoad(ctx context.Context, collection, outcome string, d time.Duration, records int) {
	if m == nil {
		return
	}
	m.loads.Add(ctx, 1, metric.WithAttributes(AttrCollection.String(collection), AttrOutcome.String(outcome)))
	m.fetchDuration.Record(ctx, d.Seconds(), metric.WithAttributes(AttrCollection.String(collection)))
	if outcome == LoadOutcomeOK {
		m.records.Record(ctx, int64(records), metric.WithAttributes(AttrCollection.String(collection)))
	}
}

// RecordReport records one assembled report
func (m *LedgerMetrics) RecordReport(ctx context.Context, reportType string, rows int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(AttrReportType.String(reportType))
	m.reports.Add(ctx, 1, attrs)
	m.reportRows.Record(ctx, int64(rows), attrs)
}
