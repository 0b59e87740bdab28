package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/geniuslabs/voiceapi/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
	Environment    string `mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g. "localhost:4318").
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// The returned provider should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("Meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the pipeline's metric instruments.
type Metrics struct {
	transcriptionTotal    metric.Int64Counter
	transcriptionDuration metric.Float64Histogram
	retryTotal            metric.Int64Counter
	jobsActive            metric.Int64UpDownCounter
	batchTotal            metric.Int64Counter
	batchCost             metric.Float64Counter
	fallbackBytes         metric.Int64Counter
}

// NewMetrics creates the pipeline's metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	transcriptionTotal, err := meter.Int64Counter("transcription.total",
		metric.WithDescription("Transcriptions by provider and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.total counter: %w", err)
	}

	transcriptionDuration, err := meter.Float64Histogram("transcription.duration",
		metric.WithDescription("Wall-clock duration of transcription calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.duration histogram: %w", err)
	}

	retryTotal, err := meter.Int64Counter("transcription.retries",
		metric.WithDescription("Retried transcription attempts by provider"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.retries counter: %w", err)
	}

	jobsActive, err := meter.Int64UpDownCounter("jobs.active",
		metric.WithDescription("Recording jobs currently holding a limiter slot"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jobs.active gauge: %w", err)
	}

	batchTotal, err := meter.Int64Counter("batch.total",
		metric.WithDescription("Finalized batches by terminal status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating batch.total counter: %w", err)
	}

	batchCost, err := meter.Float64Counter("batch.cost_usd",
		metric.WithDescription("Accumulated transcription cost in USD"),
		metric.WithUnit("{usd}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating batch.cost_usd counter: %w", err)
	}

	fallbackBytes, err := meter.Int64Counter("ingest.fallback_bytes",
		metric.WithDescription("Audio bytes stored by the failure safety net"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ingest.fallback_bytes counter: %w", err)
	}

	return &Metrics{
		transcriptionTotal:    transcriptionTotal,
		transcriptionDuration: transcriptionDuration,
		retryTotal:            retryTotal,
		jobsActive:            jobsActive,
		batchTotal:            batchTotal,
		batchCost:             batchCost,
		fallbackBytes:         fallbackBytes,
	}, nil
}

// RecordTranscription records one finished transcription call.
func (m *Metrics) RecordTranscription(ctx context.Context, provider, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	)
	m.transcriptionTotal.Add(ctx, 1, attrs)
	m.transcriptionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
	))
}

// RecordRetry records one retried attempt.
func (m *Metrics) RecordRetry(ctx context.Context, provider string) {
	m.retryTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordJobStart marks a job entering the limiter.
func (m *Metrics) RecordJobStart(ctx context.Context) {
	m.jobsActive.Add(ctx, 1)
}

// RecordJobEnd marks a job releasing its limiter slot.
func (m *Metrics) RecordJobEnd(ctx context.Context) {
	m.jobsActive.Add(ctx, -1)
}

// RecordBatchFinalized records a batch reaching a terminal status.
func (m *Metrics) RecordBatchFinalized(ctx context.Context, status string, costUSD float64) {
	m.batchTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	if costUSD > 0 {
		m.batchCost.Add(ctx, costUSD)
	}
}

// RecordFallbackStored records audio persisted by the safety net.
func (m *Metrics) RecordFallbackStored(ctx context.Context, bytes int64) {
	m.fallbackBytes.Add(ctx, bytes)
}
