package telemetry

import (
	"context"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{
			name: "disabled",
			opts: Options{Enabled: false},
		},
		{
			name: "enabled",
			opts: Options{Enabled: true, ServiceName: "daily-agent-test", Version: "test", Endpoint: "localhost:4318"},
		},
		{
			name: "enabled with sampling",
			opts: Options{Enabled: true, ServiceName: "daily-agent-test", Endpoint: "localhost:4318", SampleRatio: 0.25},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			shutdown, err := Setup(ctx, tt.opts)
			if err != nil {
				t.Fatalf("Setup() error = %v", err)
			}
			if shutdown == nil {
				t.Fatal("Expected a shutdown func")
			}
			if err := shutdown(ctx); err != nil {
				t.Errorf("shutdown() error = %v", err)
			}
		})
	}
}

func TestSampler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ratio    float64
		expected string
	}{
		{ratio: 0, expected: sdktrace.AlwaysSample().Description()},
		{ratio: 1, expected: sdktrace.AlwaysSample().Description()},
		{ratio: 0.5, expected: sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.5)).Description()},
	}
	for _, tt := range tests {
		if got := sampler(tt.ratio).Description(); got != tt.expected {
			t.Errorf("sampler(%v) = %s, want %s", tt.ratio, got, tt.expected)
		}
	}
}

func TestShutdown_NilProvider(t *testing.T) {
	if err := Shutdown(context.Background(), nil); err != nil {
		t.Errorf("Shutdown() with nil provider should not error, got: %v", err)
	}
}
