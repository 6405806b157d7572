package script

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/vango-dev/stacknav/internal/errors"
	"github.com/vango-dev/stacknav/pkg/allocation"
	"github.com/vango-dev/stacknav/pkg/navigation"
	"github.com/vango-dev/stacknav/pkg/router"
	"github.com/vango-dev/stacknav/pkg/view"
)

var testRoutes = router.Config{
	Routes: []router.Route{
		{Path: "/", Component: "Home", Meta: router.Meta{
			Breakpoints: []allocation.Breakpoint{{Threshold: 0, MinVW: 40}},
		}},
		{Path: "/users/[id]", Component: "User", Meta: router.Meta{
			Type:        "user",
			Breakpoints: []allocation.Breakpoint{{Threshold: 0, MinVW: 40}},
		}},
	},
}

const testScript = `width: 1000
steps:
  - go: {href: /users/1}
  - name: second user
    navigate: {path: /users/2, append: true}
  - close: active
  - settle: true
  - active: v1
  - query: {id: v2, params: {tab: posts}}
  - back: true
  - resize: 640
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(testScript))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if s.Width != 1000 || len(s.Steps) != 8 {
		t.Fatalf("Width/Steps = %v/%d", s.Width, len(s.Steps))
	}

	wantOps := []string{"go", "navigate", "close", "settle", "active", "query", "back", "resize"}
	for i, want := range wantOps {
		if got := s.Steps[i].Op(); got != want {
			t.Errorf("Steps[%d].Op() = %q, want %q", i, got, want)
		}
	}
	if got := s.Steps[1].Describe(); got != "second user: navigate from= path=/users/2 append" {
		t.Errorf("Describe() = %q", got)
	}
	if got := s.Steps[5].Describe(); got != "query v2 tab=posts" {
		t.Errorf("Describe() = %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"two operations", "steps:\n  - {back: true, forward: true}\n"},
		{"no operation", "steps:\n  - name: nothing\n"},
		{"unknown field", "steps:\n  - jump: /x\n"},
		{"bad target", "steps:\n  - navigate: {path: /x, target: _parent}\n"},
		{"missing href", "steps:\n  - go: {replace: true}\n"},
		{"bad yaml", "steps: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !stderrors.Is(err, apperrors.New("X002")) {
				t.Errorf("Parse() error = %v, want X002", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.yaml")
	if err := os.WriteFile(path, []byte(testScript), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Errorf("Load() error: %v", err)
	}
	if _, err := Load(path + ".missing"); err == nil {
		t.Error("Load(missing) error = nil")
	}
}

func TestRun(t *testing.T) {
	s, err := Parse([]byte(testScript))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	sess, err := NewSession(testRoutes, nil, s, nil)
	if err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}
	defer sess.Close()

	var results []Result
	if err := sess.Run(s, func(r Result) { results = append(results, r) }); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(results) != 8 {
		t.Fatalf("len(results) = %d, want 8", len(results))
	}

	tests := []struct {
		outcome navigation.Outcome
		active  string
		views   int
	}{
		{navigation.OutcomePush, "v2", 2},
		{navigation.OutcomeAppend, "v3", 3},
		{"", "v2", 3}, // v3 still disappearing
		{"", "v2", 2},
		{"", "v1", 2},
		{"", "v1", 2},
		{"", "v2", 2},
		{"", "v2", 2},
	}
	for i, tt := range tests {
		r := results[i]
		if r.Index != i {
			t.Errorf("results[%d].Index = %d", i, r.Index)
		}
		if !r.Changed {
			t.Errorf("step %d Changed = false", i)
		}
		if r.Outcome != tt.outcome {
			t.Errorf("step %d Outcome = %q, want %q", i, r.Outcome, tt.outcome)
		}
		if r.Frame.ActiveID != tt.active || len(r.Frame.Views) != tt.views {
			t.Errorf("step %d active/views = %s/%d, want %s/%d", i, r.Frame.ActiveID, len(r.Frame.Views), tt.active, tt.views)
		}
	}

	if got := results[2].Frame.Views[2].Mode; got != view.ModeDisappear {
		t.Errorf("closed view mode = %s, want disappear", got)
	}
	if got := results[5].Frame.Views[1].Def.URL; got != "/users/1?tab=posts" {
		t.Errorf("URL after query = %q", got)
	}
	if f := results[7].Frame; f.Width != 640 || f.Allocations[0].VW != 50 {
		t.Errorf("resize frame = %v/%+v", f.Width, f.Allocations)
	}
}

func TestRunUnknownView(t *testing.T) {
	s, err := Parse([]byte("steps:\n  - close: v9\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	sess, err := NewSession(testRoutes, nil, s, nil)
	if err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}
	defer sess.Close()

	err = sess.Run(s, nil)
	if !stderrors.Is(err, apperrors.New("X003")) || !stderrors.Is(err, apperrors.New("N001")) {
		t.Errorf("Run() error = %v, want X003 wrapping N001", err)
	}
}
