package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/vango-dev/stacknav/internal/errors"
	"github.com/vango-dev/stacknav/pkg/router"
)

const sampleYAML = `name: mail
basePath: /app
routes:
  - path: /
    component: Home
  - path: /inbox/[id]
    component: Message
    type: message
    breakpoints:
      - {breakpoint: 0, minVw: 100}
      - {breakpoint: 900, minVw: 40}
layouts:
  /inbox: InboxLayout
errors:
  /: NotFound
transition:
  window: 150ms
`

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.BasePath != DefaultBasePath {
		t.Errorf("BasePath = %q, want %q", cfg.BasePath, DefaultBasePath)
	}
	if cfg.Duplicates != DefaultDuplicates {
		t.Errorf("Duplicates = %q, want %q", cfg.Duplicates, DefaultDuplicates)
	}
	if cfg.Viewport.Width != DefaultWidth {
		t.Errorf("Viewport.Width = %v, want %v", cfg.Viewport.Width, DefaultWidth)
	}
	if cfg.Inspect.Addr != DefaultInspectAddr {
		t.Errorf("Inspect.Addr = %q, want %q", cfg.Inspect.Addr, DefaultInspectAddr)
	}
	if got := cfg.TransitionWindow(); got != 300*time.Millisecond {
		t.Errorf("TransitionWindow() = %v, want 300ms", got)
	}
	if cfg.Inspect.Snapshot.Enabled() {
		t.Error("Snapshot.Enabled() = true, want false")
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(tmpDir)
	if !stderrors.Is(err, apperrors.New("C001")) {
		t.Errorf("Load(empty) error = %v, want C001", err)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "stacknav.yaml"), []byte(sampleYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Name != "mail" {
		t.Errorf("Name = %q, want mail", cfg.Name)
	}
	if cfg.BasePath != "/app" {
		t.Errorf("BasePath = %q, want /app", cfg.BasePath)
	}
	if len(cfg.Routes) != 2 {
		t.Fatalf("len(Routes) = %d, want 2", len(cfg.Routes))
	}
	if bp := cfg.Routes[1].Breakpoints; len(bp) != 2 || bp[1].Breakpoint != 900 || bp[1].MinVW != 40 {
		t.Errorf("Breakpoints = %+v", bp)
	}
	if got := cfg.TransitionWindow(); got != 150*time.Millisecond {
		t.Errorf("TransitionWindow() = %v, want 150ms", got)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
	// Defaults fill what the file leaves out.
	if cfg.Duplicates != DefaultDuplicates {
		t.Errorf("Duplicates = %q, want default", cfg.Duplicates)
	}
}

func TestLoadFilePrefersJSON(t *testing.T) {
	tmpDir := t.TempDir()
	json := `{"name": "json", "routes": [{"path": "/", "component": "Home"}]}`
	if err := os.WriteFile(filepath.Join(tmpDir, "stacknav.json"), []byte(json), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "stacknav.yml"), []byte("name: yml\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Name != "json" {
		t.Errorf("Name = %q, want json", cfg.Name)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		yaml bool
		code string
	}{
		{"bad json", `{"routes": [`, false, "C002"},
		{"unknown json field", `{"port": 3000}`, false, "C002"},
		{"bad yaml", "routes: [\n  - path", true, "C002"},
		{"unknown yaml field", "port: 3000\n", true, "C002"},
		{"relative route", "routes:\n  - {path: users, component: U}\n", true, "C003"},
		{"missing component", "routes:\n  - {path: /users}\n", true, "C003"},
		{"bad min vw", "routes:\n  - {path: /, component: H, breakpoints: [{breakpoint: 0, minVw: 120}]}\n", true, "C003"},
		{"bad policy", "duplicates: newest\n", true, "C003"},
		{"bad base path", "basePath: app\n", true, "C003"},
		{"bad layout key", "layouts:\n  inbox: L\n", true, "C003"},
		{"bad window", "transition:\n  window: soon\n", true, "C003"},
		{"region required", "inspect:\n  snapshot:\n    bucket: b\n", true, "C003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.yaml)
			if !stderrors.Is(err, apperrors.New(tt.code)) {
				t.Errorf("Parse() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestParseEmptyYAML(t *testing.T) {
	cfg, err := Parse(nil, true)
	if err != nil {
		t.Fatalf("Parse(nil) error: %v", err)
	}
	if cfg.BasePath != DefaultBasePath {
		t.Errorf("BasePath = %q, want default", cfg.BasePath)
	}
}

func TestSaveTo(t *testing.T) {
	for _, name := range []string{"stacknav.json", "stacknav.yaml"} {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			path := filepath.Join(tmpDir, name)

			cfg := New()
			cfg.Name = "saved"
			cfg.Routes = []RouteConfig{{Path: "/", Component: "Home", Layouts: []string{"Root"}}}
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo() error: %v", err)
			}
			if cfg.Path() != path {
				t.Errorf("Path() = %q, want %q", cfg.Path(), path)
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error: %v", err)
			}
			if loaded.Name != "saved" || len(loaded.Routes) != 1 || loaded.Routes[0].Layouts[0] != "Root" {
				t.Errorf("loaded = %+v", loaded)
			}
		})
	}
}

func TestSaveWithoutPath(t *testing.T) {
	if err := New().Save(); err == nil {
		t.Error("Save() error = nil, want an error without a path")
	}
}

func TestRouterConfig(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML), true)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	opts, err := cfg.RouterOptions()
	if err != nil {
		t.Fatalf("RouterOptions() error: %v", err)
	}
	reg, err := router.New(cfg.RouterConfig(), opts...)
	if err != nil {
		t.Fatalf("router.New() error: %v", err)
	}

	if reg.BasePath() != "/app" {
		t.Errorf("BasePath() = %q, want /app", reg.BasePath())
	}
	m, ok := reg.Match("/inbox/7")
	if !ok {
		t.Fatal("Match(/inbox/7) = false")
	}
	if m.Component != "Message" || m.Params["id"] != "7" || m.Meta.Type != "message" {
		t.Errorf("Match = %+v", m)
	}
	if len(m.Meta.Breakpoints) != 2 || m.Meta.Breakpoints[1].Threshold != 900 {
		t.Errorf("Breakpoints = %+v", m.Meta.Breakpoints)
	}
	if got, ok := reg.ErrorFor("/missing"); !ok || got != "NotFound" {
		t.Errorf("ErrorFor() = %q, %v; want NotFound, true", got, ok)
	}
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "stacknav.yml"), []byte("name: root\n"), 0644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	root, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot() error: %v", err)
	}
	// TempDir may sit behind a symlink on some systems.
	want, _ := filepath.Abs(tmpDir)
	if root != want {
		t.Errorf("FindProjectRoot() = %q, want %q", root, want)
	}
	if !Exists(tmpDir) || Exists(nested) {
		t.Error("Exists() mismatch")
	}
}
