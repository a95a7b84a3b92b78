package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tailorflow/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Metrics holds the client-side instruments
type Metrics struct {
	// API client metrics
	RequestDuration metric.Float64Histogram
	RequestCount    metric.Int64Counter
	RetryCount      metric.Int64Counter
	ErrorCount      metric.Int64Counter

	// Business metrics
	AnalysesRun      metric.Int64Counter
	BulletsRewritten metric.Int64Counter
	ExportsRendered  metric.Int64Counter
}

// Manager manages OpenTelemetry setup for the CLI process
type Manager struct {
	cfg            config.ObservabilityConfig
	metricsCfg     config.MetricsConfig
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	shutdownFuncs  []func(context.Context) error
}

// NewManager creates a new observability manager. A disabled config yields a
// manager whose recording methods are no-ops.
func NewManager(cfg config.ObservabilityConfig, version string) (*Manager, error) {
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = version
	}

	m := &Manager{
		cfg:        cfg,
		metricsCfg: cfg.Metrics,
	}

	if !cfg.Enabled {
		return m, nil
	}

	if err := m.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return m, nil
}

func (m *Manager) newResource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(m.cfg.ServiceName),
			semconv.ServiceVersion(m.cfg.ServiceVersion),
			attribute.String("service.instance.id", m.cfg.ServiceInstance),
		),
	)
}

// initTracing sets up OpenTelemetry tracing
func (m *Manager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case m.cfg.ConsoleOutput:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case m.cfg.OTLP.Enabled:
		exporter, err = m.createOTLPTraceExporter()
	default:
		exporter = &noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := m.newResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(m.cfg.Tracing.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	m.tracerProvider = tp
	m.shutdownFuncs = append(m.shutdownFuncs, tp.Shutdown)

	return nil
}

// initMetrics sets up OpenTelemetry metrics
func (m *Manager) initMetrics() error {
	var readers []sdkmetric.Reader

	if m.cfg.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(m.metricsCfg.CollectionInterval)))
	}

	if m.cfg.OTLP.Enabled {
		reader, err := m.createOTLPMetricsReader()
		if err != nil {
			return fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, reader)
	}

	if m.cfg.Prometheus.Enabled {
		reader, mux, err := SetupPrometheusExporter(m.cfg.Prometheus)
		if err != nil {
			return fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		if reader != nil {
			readers = append(readers, reader)
			if err := StartPrometheusServer(mux, m.cfg.Prometheus.Port); err != nil {
				return fmt.Errorf("failed to start Prometheus server: %w", err)
			}
		}
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}

	res, err := m.newResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	m.meterProvider = mp
	m.shutdownFuncs = append(m.shutdownFuncs, mp.Shutdown)

	return m.initInstruments()
}

// initInstruments creates the custom instruments recorded by the API client
func (m *Manager) initInstruments() error {
	meter := m.meterProvider.Meter(m.cfg.ServiceName)
	m.metrics = &Metrics{}

	var err error
	m.metrics.RequestDuration, err = meter.Float64Histogram(
		"tailorflow_api_request_duration_seconds",
		metric.WithDescription("Duration of backend API requests"),
		metric.WithUnit("s"))
	if err != nil {
		return err
	}

	m.metrics.RequestCount, err = meter.Int64Counter(
		"tailorflow_api_requests_total",
		metric.WithDescription("Total backend API requests"))
	if err != nil {
		return err
	}

	m.metrics.RetryCount, err = meter.Int64Counter(
		"tailorflow_api_retries_total",
		metric.WithDescription("Total backend API retry attempts"))
	if err != nil {
		return err
	}

	m.metrics.ErrorCount, err = meter.Int64Counter(
		"tailorflow_api_errors_total",
		metric.WithDescription("Total backend API requests that failed after all attempts"))
	if err != nil {
		return err
	}

	m.metrics.AnalysesRun, err = meter.Int64Counter(
		"tailorflow_analyses_total",
		metric.WithDescription("Total analyses performed"))
	if err != nil {
		return err
	}

	m.metrics.BulletsRewritten, err = meter.Int64Counter(
		"tailorflow_bullets_rewritten_total",
		metric.WithDescription("Total bullet points rewritten"))
	if err != nil {
		return err
	}

	m.metrics.ExportsRendered, err = meter.Int64Counter(
		"tailorflow_exports_total",
		metric.WithDescription("Total DOCX exports rendered"))
	if err != nil {
		return err
	}

	return nil
}

// Transport wraps an HTTP round tripper with OpenTelemetry instrumentation.
// Used by the API client so that trace context propagates to the backend.
func (m *Manager) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if m == nil || !m.cfg.Enabled {
		return base
	}
	return otelhttp.NewTransport(base,
		otelhttp.WithTracerProvider(m.tracerProvider),
		otelhttp.WithMeterProvider(m.meterProvider),
	)
}

// Tracer returns a tracer for the service
func (m *Manager) Tracer(name string) oteltrace.Tracer {
	if m == nil || !m.cfg.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return otel.Tracer(name)
}

// RecordRequest records the outcome of a single API call (all attempts)
func (m *Manager) RecordRequest(ctx context.Context, endpoint string, status int, duration time.Duration, attempts int) {
	if m == nil || m.metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("endpoint", endpoint),
		attribute.Int("status", status),
	}
	m.metrics.RequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.metrics.RequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	if attempts > 1 {
		m.metrics.RetryCount.Add(ctx, int64(attempts-1), metric.WithAttributes(attrs...))
	}
}

// RecordFailure records an API call that failed after exhausting its budget
func (m *Manager) RecordFailure(ctx context.Context, endpoint string) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.ErrorCount.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", endpoint)))
}

// RecordOperation bumps a business counter: "analyze", "rewrite" or "export"
func (m *Manager) RecordOperation(ctx context.Context, operation string) {
	if m == nil || m.metrics == nil {
		return
	}
	switch operation {
	case "analyze":
		m.metrics.AnalysesRun.Add(ctx, 1)
	case "rewrite":
		m.metrics.BulletsRewritten.Add(ctx, 1)
	case "export":
		m.metrics.ExportsRendered.Add(ctx, 1)
	}
}

// Shutdown gracefully shuts down all observability components
func (m *Manager) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	for _, shutdown := range m.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// noOpSpanExporter is used when no exporter is configured
type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// createOTLPTraceExporter creates an OTLP HTTP trace exporter
func (m *Manager) createOTLPTraceExporter() (trace.SpanExporter, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(m.cfg.OTLP.Endpoint),
	}
	if m.cfg.OTLP.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(m.cfg.OTLP.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(m.cfg.OTLP.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

// createOTLPMetricsReader creates an OTLP HTTP metrics reader
func (m *Manager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(m.cfg.OTLP.Endpoint),
	}
	if m.cfg.OTLP.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(m.cfg.OTLP.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(m.cfg.OTLP.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	return sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(m.metricsCfg.CollectionInterval)), nil
}
