package otel

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestNewProviders_EmptyEndpoint_Noop(t *testing.T) {
	ctx := context.Background()
	for _, endpoint := range []string{"", "   "} {
		providers, err := NewProviders(ctx, endpoint, "storefront-gateway", false)
		if err != nil {
			t.Fatalf("NewProviders(%q): %v", endpoint, err)
		}
		if providers.TracerProvider == nil || providers.MeterProvider == nil || providers.LoggerProvider == nil {
			t.Fatalf("NewProviders(%q) returned nil providers", endpoint)
		}
		if err := providers.Shutdown(ctx); err != nil {
			t.Errorf("no-op shutdown should not fail: %v", err)
		}
	}
}

func TestNewProviders_Failure_InvalidEndpoint(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		endpoint string
	}{
		{"malformed url", "http://[invalid"},
		{"missing host", "http://"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewProviders(ctx, tt.endpoint, "storefront-gateway", false); err == nil {
				t.Errorf("NewProviders(%q) should fail", tt.endpoint)
			}
		})
	}
}

func TestNewProviders_EndpointNormalization(t *testing.T) {
	ctx := context.Background()
	// Exporter construction is lazy, so these succeed without a collector;
	// the point is that host-only and path-bearing endpoints both parse.
	for _, endpoint := range []string{"localhost:4317", "http://localhost:4317/v1/traces"} {
		providers, err := NewProviders(ctx, endpoint, "storefront-gateway", true)
		if err != nil {
			t.Fatalf("NewProviders(%q): %v", endpoint, err)
		}
		shutdownCtx, cancel := context.WithCancel(ctx)
		cancel()
		_ = providers.Shutdown(shutdownCtx)
	}
}

func TestSetGlobal(t *testing.T) {
	ctx := context.Background()
	providers, err := NewProviders(ctx, "", "storefront-gateway", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}

	prevTracer := otel.GetTracerProvider()
	prevMeter := otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(prevTracer)
		otel.SetMeterProvider(prevMeter)
	}()

	providers.SetGlobal()
	if otel.GetTracerProvider() != providers.TracerProvider {
		t.Error("global tracer provider not set")
	}
	if otel.GetMeterProvider() != providers.MeterProvider {
		t.Error("global meter provider not set")
	}
}
