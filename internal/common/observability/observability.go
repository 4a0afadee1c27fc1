package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"resume-analyzer/internal/common/logger"
)

// Observability owns the OpenTelemetry meter and tracer used around analysis
// requests. A nil *Observability is valid and records nothing.
type Observability struct {
	meterProvider    *metric.MeterProvider
	tracerProvider   *sdktrace.TracerProvider
	tracer           trace.Tracer
	analysisCounter  otelmetric.Int64Counter
	providerDuration otelmetric.Float64Histogram
	logger           logger.Logger
}

// New wires a Prometheus-backed meter and a tracer. Spans are exported to
// Jaeger only when jaegerEndpoint is set. Exporter failures are logged and
// leave that signal disabled.
func New(serviceName, jaegerEndpoint string, log logger.Logger) *Observability {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	o := &Observability{logger: log.With(map[string]interface{}{"component": "observability"})}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if jaegerEndpoint != "" {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerEndpoint)))
		if err != nil {
			o.logger.Error("Failed to create Jaeger exporter", map[string]interface{}{
				"endpoint": jaegerEndpoint,
				"error":    err,
			})
		} else {
			traceOpts = append(traceOpts, sdktrace.WithBatcher(exp))
		}
	}
	o.tracerProvider = sdktrace.NewTracerProvider(traceOpts...)
	otel.SetTracerProvider(o.tracerProvider)
	o.tracer = o.tracerProvider.Tracer(serviceName)

	exporter, err := prometheus.New()
	if err != nil {
		o.logger.Error("Failed to create Prometheus exporter", map[string]interface{}{"error": err})
		return o
	}

	o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(o.meterProvider)

	meter := o.meterProvider.Meter(serviceName)

	o.analysisCounter, _ = meter.Int64Counter(
		"analysis.requests",
		otelmetric.WithDescription("Number of resume analyses by status"),
	)

	o.providerDuration, _ = meter.Float64Histogram(
		"provider.duration",
		otelmetric.WithDescription("Generative provider call duration"),
		otelmetric.WithUnit("ms"),
	)

	return o
}

// StartSpan starts a span under ctx. With a nil receiver it returns a no-op span.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, name)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordAnalysis(ctx context.Context, status string) {
	if o != nil && o.analysisCounter != nil {
		o.analysisCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordProviderDuration(ctx context.Context, provider string, duration time.Duration, status string) {
	if o != nil && o.providerDuration != nil {
		o.providerDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown(ctx context.Context) {
	if o == nil {
		return
	}
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			o.logger.Error("Failed to shut down tracer provider", map[string]interface{}{"error": err})
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			o.logger.Error("Failed to shut down meter provider", map[string]interface{}{"error": err})
		}
	}
}
