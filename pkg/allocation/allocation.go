// Package allocation distributes viewport width among the views of a stack.
//
// Each view declares breakpoints of the form "from Threshold px upward I need
// at least MinVW percent of the viewport". Allocate picks each view's minimum
// for the current width and shares whatever is left proportionally.
package allocation

import (
	"math"
	"sort"

	"github.com/vango-dev/stacknav/pkg/view"
)

// TotalVW is the full viewport width in percent.
const TotalVW = 100.0

// Breakpoint is a minimum-width rule applying at or above Threshold pixels.
type Breakpoint struct {
	Threshold float64 `json:"breakpoint" yaml:"breakpoint"`
	MinVW     float64 `json:"minVw" yaml:"minVw"`
}

// Input describes one view of the stack for allocation.
type Input struct {
	ID          string
	Breakpoints []Breakpoint
	Mode        view.Mode
}

// Allocation is the width assigned to one view, in viewport percent.
type Allocation struct {
	ID string  `json:"id"`
	VW float64 `json:"vw"`
}

// MinWidth returns the MinVW of the breakpoint with the largest threshold
// not above width. Without such a breakpoint the view needs the full
// viewport.
func MinWidth(breakpoints []Breakpoint, width float64) float64 {
	sorted := make([]Breakpoint, len(breakpoints))
	copy(sorted, breakpoints)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Threshold > sorted[j].Threshold
	})
	for _, bp := range sorted {
		if width >= bp.Threshold {
			return bp.MinVW
		}
	}
	return TotalVW
}

// Allocate computes the width of every input view at screen width px.
//
// Views whose Mode equals exclude contribute no demand and are allocated 0,
// but still appear in the output, which keeps the input order. When the
// minimums add up to 100 or more every view gets exactly its minimum and the
// total overflows. Otherwise the remainder is shared in proportion to each
// minimum and every share is rounded on its own.
func Allocate(width float64, views []Input, exclude view.Mode) []Allocation {
	out := make([]Allocation, len(views))
	mins := make([]float64, len(views))
	included := make([]bool, len(views))

	var sum float64
	var n int
	for i, v := range views {
		out[i].ID = v.ID
		if exclude != "" && v.Mode == exclude {
			continue
		}
		included[i] = true
		mins[i] = MinWidth(v.Breakpoints, width)
		sum += mins[i]
		n++
	}
	if n == 0 {
		return out
	}

	if sum >= TotalVW {
		for i := range views {
			if included[i] {
				out[i].VW = mins[i]
			}
		}
		return out
	}

	extra := TotalVW - sum
	for i := range views {
		if !included[i] {
			continue
		}
		share := extra / float64(n)
		if sum > 0 {
			share = extra * (mins[i] / sum)
		}
		out[i].VW = math.Round(mins[i] + share)
	}
	return out
}

// VisibleFrom returns the index of the leftmost allocation that still fits
// when the stack is filled from its right edge. Everything before the index
// would push the cumulative width past 100 and is not shown.
func VisibleFrom(allocs []Allocation) int {
	var total float64
	for i := len(allocs) - 1; i >= 0; i-- {
		total += allocs[i].VW
		if total > TotalVW {
			return i + 1
		}
	}
	return 0
}
