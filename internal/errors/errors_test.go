package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"registration", "R002", `Route path must start with "/"`, CategoryRegistration},
		{"navigation", "N010", "History store write failed", CategoryNavigation},
		{"config", "C001", "Configuration file not found", CategoryConfig},
		{"snapshot", "S001", "History snapshot failed", CategorySnapshot},
		{"unknown", "Z999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	err := New("R001")
	if got, want := err.Error(), "R001: Route path is empty"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err = New("R002").WithDetail(`"users"`)
	if got, want := err.Error(), `R002: Route path must start with "/": "users"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := Newf(CategoryCLI, "bad flag %s", "--x")
	if plain.Error() != "bad flag --x" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "bad flag --x")
	}
}

func TestIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("navigate: %w", New("N010").Wrap(stderrors.New("disk full")))

	if !stderrors.Is(err, New("N010")) {
		t.Error("errors.Is should match by code through wrapping")
	}
	if stderrors.Is(err, New("N011")) {
		t.Error("errors.Is should not match a different code")
	}

	var e *Error
	if !stderrors.As(err, &e) || e.Code != "N010" {
		t.Errorf("errors.As = %v, want N010", e)
	}
	if e.Unwrap() == nil || e.Unwrap().Error() != "disk full" {
		t.Errorf("Unwrap() = %v, want disk full", e.Unwrap())
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "N010") != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New("R004")
	if FromError(orig, "N010") != orig {
		t.Error("FromError should return an *Error unchanged")
	}

	wrapped := FromError(stderrors.New("boom"), "S001")
	if wrapped.Code != "S001" || wrapped.Wrapped == nil {
		t.Errorf("FromError = %+v", wrapped)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("R002").
		WithDetail(`route "users"`).
		WithSuggestion(`Write the route as "/users".`)
	out := err.Format()

	for _, want := range []string{
		`ERROR R002: Route path must start with "/"`,
		`route "users"`,
		"Route, layout and error paths are absolute",
		`Hint: Write the route as "/users".`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() emitted ANSI codes with colors disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("R004").WithDetail("/users")
	if got, want := err.FormatCompact(), "R004: Duplicate route path (/users)"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("C003").WithDetail("basePath").Wrap(stderrors.New("must start with /"))

	var got map[string]string
	if uerr := json.Unmarshal([]byte(err.FormatJSON()), &got); uerr != nil {
		t.Fatalf("FormatJSON() is not valid JSON: %v", uerr)
	}
	want := map[string]string{
		"code":     "C003",
		"category": "config",
		"message":  "Configuration is invalid",
		"detail":   "basePath",
		"cause":    "must start with /",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("FormatJSON()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestFprintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	FprintError(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("FprintError(plain) = %q", buf.String())
	}

	buf.Reset()
	FprintError(&buf, New("X001"))
	if !strings.Contains(buf.String(), "X001: Invalid command arguments") {
		t.Errorf("FprintError(coded) = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	if len(lines) < 2 {
		t.Fatalf("wrapText produced %d lines, want several", len(lines))
	}
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line %q longer than 20", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}

func TestCodesSorted(t *testing.T) {
	codes := Codes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("Codes() not sorted at %d: %v", i, codes)
		}
	}
	if _, ok := Lookup("R001"); !ok {
		t.Error("Lookup(R001) not found")
	}
}
