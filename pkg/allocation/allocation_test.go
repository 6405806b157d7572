package allocation

import (
	"testing"

	"github.com/vango-dev/stacknav/pkg/view"
)

func TestMinWidth(t *testing.T) {
	bps := []Breakpoint{
		{Threshold: 1200, MinVW: 30},
		{Threshold: 0, MinVW: 100},
		{Threshold: 768, MinVW: 50},
	}

	tests := []struct {
		width float64
		want  float64
	}{
		{320, 100},
		{768, 50},
		{1000, 50},
		{1200, 30},
		{2560, 30},
	}
	for _, tt := range tests {
		if got := MinWidth(bps, tt.width); got != tt.want {
			t.Errorf("MinWidth(%v) = %v, want %v", tt.width, got, tt.want)
		}
	}

	if got := MinWidth(nil, 1000); got != 100 {
		t.Errorf("MinWidth(nil) = %v, want 100", got)
	}
	if got := MinWidth([]Breakpoint{{Threshold: 800, MinVW: 40}}, 500); got != 100 {
		t.Errorf("MinWidth below every threshold = %v, want 100", got)
	}
}

func TestAllocate(t *testing.T) {
	forty := []Breakpoint{{Threshold: 0, MinVW: 40}}
	thirty := []Breakpoint{{Threshold: 0, MinVW: 30}}
	full := []Breakpoint{{Threshold: 0, MinVW: 100}}

	tests := []struct {
		name    string
		views   []Input
		exclude view.Mode
		want    []float64
	}{
		{
			name:  "proportional share",
			views: []Input{{ID: "a", Breakpoints: forty}, {ID: "b", Breakpoints: forty}},
			want:  []float64{50, 50},
		},
		{
			name:  "minimum 100 never shrinks",
			views: []Input{{ID: "a", Breakpoints: forty}, {ID: "b", Breakpoints: full}},
			want:  []float64{40, 100},
		},
		{
			name:  "single full view",
			views: []Input{{ID: "a", Breakpoints: full}},
			want:  []float64{100},
		},
		{
			name:  "no breakpoints",
			views: []Input{{ID: "a"}, {ID: "b"}},
			want:  []float64{100, 100},
		},
		{
			name:  "independent rounding",
			views: []Input{{ID: "a", Breakpoints: thirty}, {ID: "b", Breakpoints: thirty}, {ID: "c", Breakpoints: thirty}},
			want:  []float64{33, 33, 33},
		},
		{
			name: "excluded view gets zero",
			views: []Input{
				{ID: "a", Breakpoints: forty, Mode: view.ModeBoth},
				{ID: "b", Breakpoints: forty, Mode: view.ModeAppear},
			},
			exclude: view.ModeAppear,
			want:    []float64{100, 0},
		},
		{
			name: "disappearing excluded at end",
			views: []Input{
				{ID: "a", Breakpoints: forty, Mode: view.ModeDisappear},
				{ID: "b", Breakpoints: thirty, Mode: view.ModeBoth},
			},
			exclude: view.ModeDisappear,
			want:    []float64{0, 100},
		},
		{
			name:  "zero minimums share evenly",
			views: []Input{{ID: "a", Breakpoints: []Breakpoint{{MinVW: 0}}}, {ID: "b", Breakpoints: []Breakpoint{{MinVW: 0}}}},
			want:  []float64{50, 50},
		},
		{
			name:  "empty",
			views: nil,
			want:  []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Allocate(1024, tt.views, tt.exclude)
			if len(got) != len(tt.want) {
				t.Fatalf("len(Allocate) = %d, want %d", len(got), len(tt.want))
			}
			for i, a := range got {
				if a.ID != tt.views[i].ID {
					t.Errorf("alloc[%d].ID = %q, want %q", i, a.ID, tt.views[i].ID)
				}
				if a.VW != tt.want[i] {
					t.Errorf("alloc[%d].VW = %v, want %v", i, a.VW, tt.want[i])
				}
			}
		})
	}
}

func TestAllocateUsesScreenWidth(t *testing.T) {
	responsive := []Breakpoint{{Threshold: 0, MinVW: 100}, {Threshold: 1024, MinVW: 25}}
	views := []Input{{ID: "list", Breakpoints: responsive}, {ID: "detail", Breakpoints: responsive}}

	narrow := Allocate(600, views, "")
	if narrow[0].VW != 100 || narrow[1].VW != 100 {
		t.Errorf("narrow = %+v, want both 100", narrow)
	}

	wide := Allocate(1440, views, "")
	if wide[0].VW != 50 || wide[1].VW != 50 {
		t.Errorf("wide = %+v, want both 50", wide)
	}
}

func TestVisibleFrom(t *testing.T) {
	tests := []struct {
		name string
		vw   []float64
		want int
	}{
		{"all fit", []float64{50, 50}, 0},
		{"last only", []float64{100, 100}, 1},
		{"two of three", []float64{40, 40, 60}, 1},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allocs := make([]Allocation, len(tt.vw))
			for i, vw := range tt.vw {
				allocs[i] = Allocation{VW: vw}
			}
			if got := VisibleFrom(allocs); got != tt.want {
				t.Errorf("VisibleFrom(%v) = %d, want %d", tt.vw, got, tt.want)
			}
		})
	}
}
