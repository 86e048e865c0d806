package middleware

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"

	"github.com/retree-dev/retree/pkg/dispatch"
)

func TestOpenTelemetryPassThrough(t *testing.T) {
	ic := OpenTelemetry(WithTracerName("test"))

	called := false
	info := &dispatch.CycleInfo{Command: "mount", First: true}
	if err := ic(info, func() error { called = true; return nil }); err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if !called {
		t.Fatal("next was not invoked")
	}

	boom := errors.New("boom")
	if err := ic(info, func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("error not propagated: %v", err)
	}
}

func TestOpenTelemetryFilter(t *testing.T) {
	extracted := false
	ic := OpenTelemetry(
		WithCycleFilter(func(info *dispatch.CycleInfo) bool {
			return info.Command != "flush"
		}),
		WithAttributeExtractor(func(info *dispatch.CycleInfo) []attribute.KeyValue {
			extracted = true
			return []attribute.KeyValue{attribute.String("app.page", "home")}
		}),
	)

	if err := ic(&dispatch.CycleInfo{Command: "flush"}, func() error { return nil }); err != nil {
		t.Fatalf("filtered cycle: %v", err)
	}
	if extracted {
		t.Fatal("extractor ran for a filtered cycle")
	}

	if err := ic(&dispatch.CycleInfo{Command: "save"}, func() error { return nil }); err != nil {
		t.Fatalf("traced cycle: %v", err)
	}
	if !extracted {
		t.Fatal("extractor did not run for a traced cycle")
	}
}
