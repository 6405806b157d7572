package middleware

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/stacknav/internal/errors"
	"github.com/vango-dev/stacknav/pkg/navigation"
	"github.com/vango-dev/stacknav/pkg/view"
)

func newTestTracing(t *testing.T, opts ...OTelOption) (*Tracing, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewTracing(append([]OTelOption{WithTracerProvider(tp)}, opts...)...), exporter
}

func attrMap(kvs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func TestTracingRecordsSpan(t *testing.T) {
	tr, exporter := newTestTracing(t,
		WithIncludeURL(true),
		WithAttributeExtractor(func(navigation.Event) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	)

	start := time.Now().Add(-time.Second)
	tr.Observe(navigation.Event{
		Op:      navigation.OpNavigate,
		Outcome: navigation.OutcomePush,
		ViewID:  "v2",
		Changed: true,
		State: view.State{ActiveID: "v2", Views: []view.ViewDef{
			{ID: "v1", URL: "/a"},
			{ID: "v2", URL: "/b"},
		}},
		Start:    start,
		Duration: 5 * time.Millisecond,
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	span := spans[0]
	if span.Name != "stacknav.navigate" {
		t.Errorf("Name = %q, want stacknav.navigate", span.Name)
	}
	if span.Status.Code != codes.Ok {
		t.Errorf("Status = %v, want Ok", span.Status.Code)
	}
	if !span.StartTime.Equal(start) || !span.EndTime.Equal(start.Add(5*time.Millisecond)) {
		t.Errorf("span time = %v..%v", span.StartTime, span.EndTime)
	}

	attrs := attrMap(span.Attributes)
	want := map[string]string{
		"stacknav.op":      "navigate",
		"stacknav.outcome": "push",
		"stacknav.view_id": "v2",
		"stacknav.changed": "true",
		"stacknav.views":   "2",
		"stacknav.url":     "/b",
		"test.attr":        "ok",
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attribute %s = %q, want %q", k, attrs[k], v)
		}
	}
}

func TestTracingRecordsError(t *testing.T) {
	tr, exporter := newTestTracing(t)

	tr.Observe(navigation.Event{
		Op:    navigation.OpClose,
		Start: time.Now(),
		Err:   errors.New("N010").Wrap(stderrors.New("disk full")),
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	span := spans[0]
	if span.Status.Code != codes.Error {
		t.Errorf("Status = %v, want Error", span.Status.Code)
	}
	if len(span.Events) == 0 || span.Events[0].Name != "exception" {
		t.Errorf("Events = %v, want a recorded exception", span.Events)
	}
	attrs := attrMap(span.Attributes)
	if attrs["stacknav.error_code"] != "N010" {
		t.Errorf("error_code = %q, want N010", attrs["stacknav.error_code"])
	}
	if _, ok := attrs["stacknav.url"]; ok {
		t.Error("url recorded without WithIncludeURL")
	}
}

func TestTracingFilter(t *testing.T) {
	tr, exporter := newTestTracing(t, WithEventFilter(func(ev navigation.Event) bool {
		return ev.Changed
	}))

	tr.Observe(navigation.Event{Op: navigation.OpSetActive, Start: time.Now()})
	tr.Observe(navigation.Event{Op: navigation.OpSetActive, Start: time.Now(), Changed: true})

	if got := len(exporter.GetSpans()); got != 1 {
		t.Errorf("got %d spans, want 1", got)
	}
}
