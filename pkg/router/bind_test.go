package router

import (
	"testing"

	"github.com/google/uuid"
)

func TestBind(t *testing.T) {
	type params struct {
		ID      int       `param:"id"`
		Org     uuid.UUID `param:"org"`
		Slug    string    `param:"slug"`
		Ratio   float64   `param:"ratio"`
		Draft   bool      `param:"draft"`
		Page    uint16    `param:"page"`
		Ignored string
	}

	org := uuid.New()
	var p params
	err := Bind(map[string]string{
		"id":    "42",
		"org":   org.String(),
		"slug":  "hello",
		"ratio": "0.5",
		"draft": "true",
		"page":  "3",
		"extra": "unused",
	}, &p)
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}

	if p.ID != 42 || p.Org != org || p.Slug != "hello" || p.Ratio != 0.5 || !p.Draft || p.Page != 3 {
		t.Errorf("Bind() = %+v", p)
	}
}

func TestBindErrors(t *testing.T) {
	type ints struct {
		ID int8 `param:"id"`
	}
	type ids struct {
		Org uuid.UUID `param:"org"`
	}
	type unsupported struct {
		Tags []string `param:"tags"`
	}

	tests := []struct {
		name   string
		params map[string]string
		target any
	}{
		{"not an int", map[string]string{"id": "abc"}, &ints{}},
		{"int overflow", map[string]string{"id": "300"}, &ints{}},
		{"bad uuid", map[string]string{"org": "nope"}, &ids{}},
		{"unsupported", map[string]string{"tags": "a"}, &unsupported{}},
		{"not a pointer", map[string]string{}, ints{}},
		{"not a struct", map[string]string{}, new(int)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Bind(tt.params, tt.target); err == nil {
				t.Error("Bind() error = nil, want error")
			}
		})
	}
}

func TestMatchBind(t *testing.T) {
	r := mustNew(t, Config{Routes: []Route{{Path: "/users/[id]", Component: "User"}}})
	m, _ := r.Match("/users/7")

	var p struct {
		ID int `param:"id"`
	}
	if err := m.Bind(&p); err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	if p.ID != 7 {
		t.Errorf("ID = %d, want 7", p.ID)
	}

	var none *Match
	if err := none.Bind(&p); err != nil {
		t.Errorf("nil Match Bind() = %v, want nil", err)
	}
}
