package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/stacknav/pkg/navigation"
)

func TestLogExporter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tp := NewLogTracerProvider(logger, slog.LevelInfo)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	tr := NewTracing(WithTracerProvider(tp))
	tr.Observe(navigation.Event{
		Op:       navigation.OpClose,
		ViewID:   "v3",
		Changed:  true,
		Start:    time.Now(),
		Duration: time.Millisecond,
	})

	out := buf.String()
	for _, want := range []string{"trace: span", "span=stacknav.close", "stacknav.view_id=v3", "duration=1ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
