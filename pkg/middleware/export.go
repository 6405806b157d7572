package middleware

import (
	"context"
	"log/slog"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// LogExporter is a span exporter that writes finished spans to a logger.
// It suits the inspector and local debugging where no collector runs.
type LogExporter struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogExporter creates an exporter logging at level. A nil logger uses
// slog.Default().
func NewLogExporter(logger *slog.Logger, level slog.Level) *LogExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogExporter{logger: logger, level: level}
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		args := []any{
			"span", s.Name(),
			"duration", s.EndTime().Sub(s.StartTime()),
			"status", s.Status().Code.String(),
		}
		for _, kv := range s.Attributes() {
			args = append(args, string(kv.Key), kv.Value.Emit())
		}
		e.logger.Log(ctx, e.level, "trace: span", args...)
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter.
func (e *LogExporter) Shutdown(context.Context) error {
	return nil
}

// NewLogTracerProvider returns a provider that samples every span and
// exports it synchronously to logger.
func NewLogTracerProvider(logger *slog.Logger, level slog.Level) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSyncer(NewLogExporter(logger, level)),
	)
}
