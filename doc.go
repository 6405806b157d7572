// Package stacknav is a navigation engine for applications that show several
// views side by side in a stack: master-detail panes, drill-down columns,
// modals over modals.
//
// The engine keeps an ordered list of open views in the host's history
// record. Navigating pushes, focuses, appends or takes over views; every
// committed change is diffed against the previous stack so that entering
// and leaving views can be animated, each view is resolved through the
// route registry to a component wrapped in its layout chain, and the
// viewport width is shared among the visible views according to their
// breakpoints.
//
// Usage:
//
//	app, err := stacknav.New(stacknav.Config{
//	    Routes: router.Config{
//	        Routes: []router.Route{
//	            {Path: "/inbox", Component: "Inbox"},
//	            {Path: "/inbox/[id]", Component: "Message"},
//	        },
//	        Layouts: map[string]router.Handle{"/inbox": "InboxLayout"},
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer app.Close()
//
//	app.Subscribe(func(f stacknav.Frame) {
//	    views, widths := f.Visible()
//	    // render views at widths
//	})
//
//	app.Machine().Go("/inbox/42", false)
//
// Frame subscribers and history listeners run synchronously inside the
// navigation commit. They must not call back into the Machine on the same
// goroutine.
package stacknav
