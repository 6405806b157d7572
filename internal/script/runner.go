package script

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/vango-dev/stacknav"
	"github.com/vango-dev/stacknav/internal/errors"
	"github.com/vango-dev/stacknav/pkg/history"
	"github.com/vango-dev/stacknav/pkg/navigation"
	"github.com/vango-dev/stacknav/pkg/router"
	"github.com/vango-dev/stacknav/pkg/transition"
)

// Result is the outcome of one step.
type Result struct {
	Index int
	Step  Step

	// Outcome is set for navigate and go steps.
	Outcome navigation.Outcome

	// Changed reports whether the step committed anything.
	Changed bool

	Frame stacknav.Frame
}

// Session is the engine a script runs against.
type Session struct {
	App   *stacknav.App
	Store *history.MemoryStore
}

// manualTimer never fires; windows close only on settle steps.
type manualTimer struct{}

func (manualTimer) Stop() bool { return true }

func manualAfterFunc(time.Duration, func()) transition.Stopper {
	return manualTimer{}
}

// NewSession creates an in-memory session for s with sequential view ids.
func NewSession(routes router.Config, routerOpts []router.Option, s *Script, logger *slog.Logger) (*Session, error) {
	n := 0
	app, err := stacknav.New(stacknav.Config{
		Routes:        routes,
		RouterOptions: routerOpts,
		InitialURL:    s.InitialURL,
		Width:         s.Width,
		AfterFunc:     manualAfterFunc,
		Logger:        logger,
		IDGenerator: func() string {
			n++
			return fmt.Sprintf("v%d", n)
		},
	})
	if err != nil {
		return nil, err
	}
	return &Session{App: app, Store: app.Store().(*history.MemoryStore)}, nil
}

// Close releases the session.
func (s *Session) Close() {
	s.App.Close()
}

// Run executes every step in order and calls fn after each one. It stops at
// the first failing step.
func (s *Session) Run(sc *Script, fn func(Result)) error {
	for i, step := range sc.Steps {
		res, err := s.Step(step)
		if err != nil {
			return errors.New("X003").
				WithDetailf("step %d (%s)", i+1, step.Describe()).
				Wrap(err)
		}
		res.Index = i
		if fn != nil {
			fn(res)
		}
	}
	return nil
}

// Step executes one step.
func (s *Session) Step(step Step) (Result, error) {
	res := Result{Step: step}
	m := s.App.Machine()

	var err error
	switch step.Op() {
	case "navigate":
		nav := step.Navigate
		var from string
		if from, err = s.resolve(nav.From, false); err != nil {
			return res, err
		}
		var opts []navigation.NavigateOption
		if nav.Append {
			opts = append(opts, navigation.WithAppend())
		}
		if nav.Target != "" {
			opts = append(opts, navigation.WithTarget(nav.Target))
		}
		if nav.Props != nil {
			opts = append(opts, navigation.WithProps(nav.Props))
		}
		if nav.Layout != "" {
			opts = append(opts, navigation.WithLayout(nav.Layout))
		}
		res.Outcome, err = m.Navigate(from, nav.Path, nav.Query, opts...)
		res.Changed = err == nil && res.Outcome != navigation.OutcomeNoop
	case "go":
		res.Outcome, err = m.Go(step.Go.Href, step.Go.Replace)
		res.Changed = err == nil && res.Outcome != navigation.OutcomeNoop
	case "close":
		res.Changed, err = s.withID(step.Close, m.Close)
	case "active":
		res.Changed, err = s.withID(step.Active, m.SetActive)
	case "query":
		res.Changed, err = s.withID(step.Query.ID, func(id string) (bool, error) {
			return m.UpdateQueryParams(id, step.Query.Params, step.Query.ReplaceAll)
		})
	case "props":
		res.Changed, err = s.withID(step.Props.ID, func(id string) (bool, error) {
			return m.UpdateProps(id, step.Props.Params, step.Props.ReplaceAll)
		})
	case "back":
		res.Changed = s.Store.Back()
	case "forward":
		res.Changed = s.Store.Forward()
	case "resize":
		s.App.Resize(step.Resize)
		res.Changed = true
	case "settle":
		before := len(s.App.Frame().Views)
		s.App.Settle()
		res.Changed = len(s.App.Frame().Views) != before
	default:
		return res, fmt.Errorf("step sets no single operation")
	}
	if err != nil {
		return res, err
	}

	res.Frame = s.App.Frame()
	return res, nil
}

func (s *Session) withID(id string, f func(string) (bool, error)) (bool, error) {
	resolved, err := s.resolve(id, true)
	if err != nil {
		return false, err
	}
	return f(resolved)
}

// resolve maps ActiveID to the active view, as well as an empty origin.
// With mustExist an unknown id is an error.
func (s *Session) resolve(id string, mustExist bool) (string, error) {
	st, err := s.App.Machine().State()
	if err != nil {
		return "", err
	}
	if id == ActiveID || (id == "" && !mustExist) {
		return st.ActiveID, nil
	}
	if _, ok := st.Find(id); mustExist && !ok {
		return "", errors.New("N001").WithDetailf("view %q", id)
	}
	return id, nil
}
