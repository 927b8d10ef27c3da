package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tbourn/elix-bot/internal/config"
)

// keepGlobals restores the global provider and propagator after the test.
func keepGlobals(t *testing.T) {
	t.Helper()
	tp, prop := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(prop)
	})
}

func otelCfg(name string) config.OTELConfig {
	return config.OTELConfig{
		Enabled:     true,
		Insecure:    true,
		Endpoint:    "localhost:4317",
		ServiceName: name,
		SampleRatio: 1,
	}
}

func TestSetupOTel_DisabledLeavesGlobals(t *testing.T) {
	keepGlobals(t)
	before := otel.GetTracerProvider()

	cfg := otelCfg("elix-off")
	cfg.Enabled = false
	shutdown, err := SetupOTel(context.Background(), cfg, "v0")
	if err != nil || shutdown == nil {
		t.Fatalf("SetupOTel = %v, %v", shutdown, err)
	}
	if otel.GetTracerProvider() != before {
		t.Fatalf("disabled tracing must not replace the provider")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown: %v", err)
	}
}

func TestSetupOTel_InstallsProvider(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name     string
		ctx      context.Context
		insecure bool
	}{
		{"plaintext", context.Background(), true},
		{"tls", context.Background(), false},
		// the gRPC client dials lazily
		{"canceled context", canceled, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			keepGlobals(t)
			cfg := otelCfg("elix-" + tc.name)
			cfg.Insecure = tc.insecure

			shutdown, err := SetupOTel(tc.ctx, cfg, "v1.2.3")
			if err != nil {
				t.Fatalf("SetupOTel: %v", err)
			}
			defer func() { _ = shutdown(context.Background()) }()

			if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
				t.Fatalf("provider = %T", otel.GetTracerProvider())
			}

			ctx, span := otel.Tracer("router").Start(context.Background(), "route")
			carrier := propagation.MapCarrier{}
			otel.GetTextMapPropagator().Inject(ctx, carrier)
			span.End()
			if carrier.Get("traceparent") == "" {
				t.Fatalf("traceparent not injected")
			}
		})
	}
}

func TestSetupOTel_SeamFailures(t *testing.T) {
	cases := []struct {
		name  string
		patch func() (restore func())
		want  string
	}{
		{
			name: "exporter",
			patch: func() func() {
				orig := newOTLPExporterFn
				newOTLPExporterFn = func(context.Context, otlptrace.Client) (*otlptrace.Exporter, error) {
					return nil, errors.New("dial refused")
				}
				return func() { newOTLPExporterFn = orig }
			},
			want: "otel: exporter",
		},
		{
			name: "resource",
			patch: func() func() {
				orig := newServiceResourceFn
				newServiceResourceFn = func(context.Context, string, string) (*resource.Resource, error) {
					return nil, errors.New("bad attrs")
				}
				return func() { newServiceResourceFn = orig }
			},
			want: "otel: resource",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			keepGlobals(t)
			defer tc.patch()()
			tp, prop := otel.GetTracerProvider(), otel.GetTextMapPropagator()

			_, err := SetupOTel(context.Background(), otelCfg("elix-fail"), "v0")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v; want %q", err, tc.want)
			}
			if otel.GetTracerProvider() != tp || otel.GetTextMapPropagator() != prop {
				t.Fatalf("globals changed on failure")
			}
		})
	}
}

func TestSetupOTel_ShutdownWithinDeadline(t *testing.T) {
	keepGlobals(t)
	shutdown, err := SetupOTel(context.Background(), otelCfg("elix-shutdown"), "v1")
	if err != nil {
		t.Fatalf("SetupOTel: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestServiceResource_Attributes(t *testing.T) {
	res, err := newServiceResourceFn(context.Background(), "elix-bot", "v1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"service.name":    "elix-bot",
		"service.version": "v1.0.0",
		"elix.transport":  "telegram",
	}
	got := map[string]string{}
	for _, kv := range res.Attributes() {
		got[string(kv.Key)] = kv.Value.Emit()
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q; want %q", k, got[k], v)
		}
	}
}

func TestSetupOTel_SampleRatioClamped(t *testing.T) {
	keepGlobals(t)
	for _, ratio := range []float64{-1, 7} {
		cfg := otelCfg("elix-ratio")
		cfg.SampleRatio = ratio
		shutdown, err := SetupOTel(context.Background(), cfg, "v1")
		if err != nil {
			t.Fatalf("ratio %v: %v", ratio, err)
		}
		_, span := otel.Tracer("ratio").Start(context.Background(), "s")
		sampled := span.SpanContext().IsSampled()
		span.End()
		if sampled != (ratio > 0) {
			t.Errorf("ratio %v: sampled=%v", ratio, sampled)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		_ = shutdown(ctx)
		cancel()
	}
}
