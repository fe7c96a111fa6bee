package infra

import (
	"context"
	"log"
	"time"

	"github.com/openpan/drive-service/config"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// TelemetryClient owns the OTLP trace and metric providers plus the Go
// runtime instrumentation. All of it is optional; without an endpoint the
// tracer is a noop.
type TelemetryClient struct {
	Tracer         trace.Tracer
	traceProvider  *sdktrace.TracerProvider
	metricProvider *sdkmetric.MeterProvider
}

func InitTelemetryClient(cfg *config.EnvConfig) *TelemetryClient {
	if cfg.Grafana.OTLPEndpoint == "" {
		return &TelemetryClient{Tracer: otel.Tracer(cfg.Grafana.ServiceName)}
	}

	ctx := context.Background()

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.Grafana.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment.Mode),
		),
	)
	if err != nil {
		log.Fatalf("Failed to build telemetry resource: %v", err)
	}

	traceExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Grafana.OTLPEndpoint),
	)
	if err != nil {
		log.Fatalf("Failed to initialize OTLP trace exporter: %v", err)
	}

	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(traceProvider)

	metricExporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(cfg.Grafana.OTLPEndpoint),
	)
	if err != nil {
		log.Fatalf("Failed to initialize OTLP metric exporter: %v", err)
	}

	metricProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
			sdkmetric.WithInterval(30*time.Second))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(metricProvider)

	if err := runtime.Start(runtime.WithMeterProvider(metricProvider)); err != nil {
		log.Printf("Warning: runtime instrumentation failed to start: %v", err)
	}

	return &TelemetryClient{
		Tracer:         traceProvider.Tracer(cfg.Grafana.ServiceName),
		traceProvider:  traceProvider,
		metricProvider: metricProvider,
	}
}

func (t *TelemetryClient) Shutdown(ctx context.Context) {
	if t.traceProvider != nil {
		_ = t.traceProvider.Shutdown(ctx)
	}
	if t.metricProvider != nil {
		_ = t.metricProvider.Shutdown(ctx)
	}
}
