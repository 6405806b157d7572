package stacknav

import (
	"time"

	"github.com/vango-dev/stacknav/pkg/allocation"
	"github.com/vango-dev/stacknav/pkg/stack"
	"github.com/vango-dev/stacknav/pkg/transition"
)

// Frame causes besides the history triggers.
const (
	CauseSettle = "settle"
	CauseResize = "resize"
)

// Frame is the renderable picture of the stack after one change.
type Frame struct {
	Seq uint64    `json:"seq"`
	At  time.Time `json:"at"`

	// Cause is the history trigger that committed the state, CauseSettle
	// when a transition window closed or CauseResize.
	Cause string `json:"cause"`

	ActiveID string `json:"activeId"`

	// Views is the stacked (non-void) views with their lifecycle mode,
	// including views still disappearing.
	Views []stack.View `json:"views"`
	Void  []stack.View `json:"void"`

	// Allocations are the widths of Views, index for index, once the
	// transition has finished: disappearing views take no width.
	Allocations []allocation.Allocation `json:"allocations"`

	// StartAllocations are the widths when the transition starts:
	// appearing views take no width yet.
	StartAllocations []allocation.Allocation `json:"startAllocations"`

	// VisibleFrom is the first index of Views that fits on screen.
	VisibleFrom int     `json:"visibleFrom"`
	Width       float64 `json:"width"`

	// Transition is the diff that produced this frame when the committed
	// view list changed.
	Transition []transition.Item `json:"transition,omitempty"`
}

// Visible returns the views that fit on screen with their widths.
func (f Frame) Visible() ([]stack.View, []allocation.Allocation) {
	if f.VisibleFrom >= len(f.Views) {
		return nil, nil
	}
	return f.Views[f.VisibleFrom:], f.Allocations[f.VisibleFrom:]
}

func (f Frame) clone() Frame {
	f.Views = append([]stack.View(nil), f.Views...)
	f.Void = append([]stack.View(nil), f.Void...)
	f.Allocations = append([]allocation.Allocation(nil), f.Allocations...)
	f.StartAllocations = append([]allocation.Allocation(nil), f.StartAllocations...)
	f.Transition = append([]transition.Item(nil), f.Transition...)
	return f
}
