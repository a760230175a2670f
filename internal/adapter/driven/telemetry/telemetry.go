package telemetry

import (
	"context"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/shared/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Setup installs an OTLP trace exporter when an endpoint is configured.
// The returned function flushes and shuts the provider down; it is a no-op otherwise.
func Setup(ctx context.Context, serviceName string, cfg types.TelemetryConfig, console types.ConsoleInterface) func(context.Context) error {
	if cfg.OTLPEndpoint == "" {
		return func(context.Context) error { return nil }
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		console.LogWarning("Telemetry disabled: %s", err)
		return func(context.Context) error { return nil }
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		console.LogDebug("otel resource error: %s", err)
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	console.LogDebug("Exporting traces to %s", cfg.OTLPEndpoint)

	return provider.Shutdown
}
