package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testConfig = `name: test
routes:
  - path: /
    component: Home
    breakpoints: [{breakpoint: 0, minVw: 40}]
  - path: /users/[id]
    component: User
    type: user
    breakpoints: [{breakpoint: 0, minVw: 40}]
layouts:
  /users: UsersLayout
errors:
  /: NotFound
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "stacknav.yaml"), []byte(testConfig), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoutesCommand(t *testing.T) {
	dir := writeProject(t)

	out, err := run(t, "routes", "--config", dir)
	if err != nil {
		t.Fatalf("routes error: %v", err)
	}
	for _, want := range []string{"PATH", "/users/[id]", "UsersLayout", "user", "0:40"} {
		if !strings.Contains(out, want) {
			t.Errorf("routes output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "routes", "--config", dir, "--json")
	if err != nil {
		t.Fatalf("routes --json error: %v", err)
	}
	var entries []map[string]any
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("routes --json output is not JSON: %v\n%s", err, out)
	}
	if len(entries) != 2 {
		t.Errorf("len(entries) = %d, want 2", len(entries))
	}
}

func TestMatchCommand(t *testing.T) {
	dir := writeProject(t)

	tests := []struct {
		path string
		want []string
	}{
		{"/users/42", []string{"Component: User", "UsersLayout", "id=42", "Type:      user"}},
		{"/users/42?tab=x", []string{"id=42"}},
		{"/missing", []string{"404  /missing", "Error view: NotFound"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			out, err := run(t, "match", "--config", dir, tt.path)
			if err != nil {
				t.Fatalf("match error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}

	if _, err := run(t, "match", "--config", dir); err == nil {
		t.Error("match without a path should fail")
	}
}

func TestAllocateCommand(t *testing.T) {
	dir := writeProject(t)

	out, err := run(t, "allocate", "--config", dir, "--width", "1000", "--json", "/users/1", "/users/2")
	if err != nil {
		t.Fatalf("allocate error: %v", err)
	}
	var entries []struct {
		View    string  `json:"view"`
		VW      float64 `json:"vw"`
		PX      float64 `json:"px"`
		Visible bool    `json:"visible"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("allocate output is not JSON: %v\n%s", err, out)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	for i, e := range entries {
		if e.VW != 50 || e.PX != 500 || !e.Visible {
			t.Errorf("entries[%d] = %+v, want 50vw/500px visible", i, e)
		}
	}
	if entries[0].View != "UsersLayout(User{id=1})" {
		t.Errorf("View = %q", entries[0].View)
	}
}

func TestSimulateCommand(t *testing.T) {
	dir := writeProject(t)
	scriptPath := filepath.Join(dir, "flow.yaml")
	script := "steps:\n  - go: {href: /users/1}\n  - close: active\n  - settle: true\n"
	if err := os.WriteFile(scriptPath, []byte(script), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "simulate", "--config", dir, scriptPath)
	if err != nil {
		t.Fatalf("simulate error: %v", err)
	}
	for _, want := range []string{"start", "#1 go /users/1 → push", "v2:appear", "#2 close active", "disappear", "#3 settle"} {
		if !strings.Contains(out, want) {
			t.Errorf("simulate output missing %q:\n%s", want, out)
		}
	}

	if _, err := run(t, "simulate", "--config", dir, filepath.Join(dir, "nope.yaml")); err == nil {
		t.Error("simulate with a missing script should fail")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q, want %q", out, version)
	}
}

func TestMissingConfig(t *testing.T) {
	if _, err := run(t, "routes", "--config", t.TempDir()); err == nil {
		t.Error("routes without configuration should fail")
	}
}
