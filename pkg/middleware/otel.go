package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/stacknav/pkg/navigation"
)

// Default tracer name for stacknav.
const defaultTracerName = "stacknav"

// OTelConfig configures the OpenTelemetry observer.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "stacknav").
	TracerName string

	// TracerProvider overrides the global tracer provider.
	TracerProvider trace.TracerProvider

	// IncludeURL records the active view URL. URLs may carry user data in
	// their query, so it is disabled by default.
	IncludeURL bool

	// Filter determines which events to trace.
	// Return true to trace the event, false to skip.
	// If nil, all events are traced.
	Filter func(ev navigation.Event) bool

	// AttributeExtractor extracts custom attributes from an event.
	AttributeExtractor func(ev navigation.Event) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry observer.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeURL enables recording the active view URL.
func WithIncludeURL(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeURL = include
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(ev navigation.Event) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ev navigation.Event) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// Tracing is a navigation observer that records one span per operation.
type Tracing struct {
	config OTelConfig
	tracer trace.Tracer
}

// NewTracing creates the tracing observer. Spans are reported after the
// operation completes, with its real start and end time.
//
// The tracer uses the global OpenTelemetry tracer provider unless one is
// given. Configure it in main() before creating the machine:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func NewTracing(opts ...OTelOption) *Tracing {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracing{config: config, tracer: tp.Tracer(config.TracerName)}
}

// Observe implements navigation.Observer.
func (t *Tracing) Observe(ev navigation.Event) {
	if t.config.Filter != nil && !t.config.Filter(ev) {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("stacknav.op", string(ev.Op)),
		attribute.String("stacknav.view_id", ev.ViewID),
		attribute.Bool("stacknav.changed", ev.Changed),
		attribute.Int("stacknav.views", len(ev.State.Views)),
	}
	if ev.Outcome != "" {
		attrs = append(attrs, attribute.String("stacknav.outcome", string(ev.Outcome)))
	}
	if t.config.IncludeURL {
		if v, ok := ev.State.Active(); ok {
			attrs = append(attrs, attribute.String("stacknav.url", v.URL))
		}
	}
	if t.config.AttributeExtractor != nil {
		attrs = append(attrs, t.config.AttributeExtractor(ev)...)
	}

	_, span := t.tracer.Start(
		context.Background(),
		fmt.Sprintf("stacknav.%s", ev.Op),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(ev.Start),
	)

	if ev.Err != nil {
		span.RecordError(ev.Err)
		span.SetStatus(codes.Error, ev.Err.Error())
		span.SetAttributes(attribute.String("stacknav.error_code", errorCode(ev.Err)))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(ev.Start.Add(ev.Duration)))
}
