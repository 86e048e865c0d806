package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/retree-dev/retree/pkg/dispatch"
)

const defaultTracerName = "retree"

// OTelConfig configures the OpenTelemetry update-cycle interceptor.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "retree").
	TracerName string

	// Filter determines which cycles to trace. Return true to trace.
	// If nil, all cycles are traced.
	Filter func(info *dispatch.CycleInfo) bool

	// AttributeExtractor adds custom attributes to each traced cycle.
	AttributeExtractor func(info *dispatch.CycleInfo) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry interceptor.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithCycleFilter sets a filter function for cycles.
func WithCycleFilter(filter func(info *dispatch.CycleInfo) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(info *dispatch.CycleInfo) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry returns an update-cycle interceptor that wraps each cycle
// in a span named after its command.
func OpenTelemetry(opts ...OTelOption) dispatch.Interceptor {
	cfg := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.tracer = otel.Tracer(cfg.TracerName)

	return func(info *dispatch.CycleInfo, next func() error) error {
		if cfg.Filter != nil && !cfg.Filter(info) {
			return next()
		}

		_, span := cfg.tracer.Start(context.Background(),
			fmt.Sprintf("retree.cycle.%s", info.Command),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(
				attribute.String("retree.command", info.Command),
				attribute.Bool("retree.first_mount", info.First),
			),
		)
		defer span.End()

		if cfg.AttributeExtractor != nil {
			span.SetAttributes(cfg.AttributeExtractor(info)...)
		}

		err := next()
		span.SetAttributes(attribute.Int("retree.patches", info.Patches))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		span.SetStatus(codes.Ok, "")
		return nil
	}
}
