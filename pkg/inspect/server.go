package inspect

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/stacknav"
	"github.com/vango-dev/stacknav/internal/errors"
	"github.com/vango-dev/stacknav/pkg/history"
	"github.com/vango-dev/stacknav/pkg/navigation"
	"github.com/vango-dev/stacknav/pkg/router"
	"github.com/vango-dev/stacknav/pkg/urlparam"
	"github.com/vango-dev/stacknav/pkg/view"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGatherer exposes g on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithCheckOrigin sets the WebSocket origin check of /events.
func WithCheckOrigin(f func(*http.Request) bool) Option {
	return func(s *Server) {
		s.checkOrigin = f
	}
}

// Server exposes one navigation session over HTTP.
type Server struct {
	mu    sync.RWMutex
	app   *stacknav.App
	unsub func()

	hub         *Hub
	gatherer    prometheus.Gatherer
	checkOrigin func(*http.Request) bool
	logger      *slog.Logger
	router      chi.Router
}

// New creates a server for app and subscribes to its frames.
func New(app *stacknav.App, opts ...Option) *Server {
	s := &Server{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub(s.checkOrigin, s.logger)
	s.app = app
	s.unsub = app.Subscribe(s.hub.NotifyFrame)
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the events hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// App returns the current session.
func (s *Server) App() *stacknav.App {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.app
}

// Swap replaces the session, for example after the route configuration
// changed, and returns the previous one. Clients receive a reload event
// followed by the new frame.
func (s *Server) Swap(app *stacknav.App) *stacknav.App {
	s.mu.Lock()
	prev := s.app
	s.unsub()
	s.app = app
	s.unsub = app.Subscribe(s.hub.NotifyFrame)
	s.mu.Unlock()

	s.hub.NotifyReload()
	s.hub.NotifyFrame(app.Frame())
	return prev
}

// Close disconnects all clients and detaches from the session.
func (s *Server) Close() {
	s.mu.Lock()
	s.unsub()
	s.mu.Unlock()
	s.hub.Close()
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/state", s.handleState)
	r.Get("/frame", s.handleFrame)
	r.Get("/routes", s.handleRoutes)
	r.Get("/match", s.handleMatch)
	r.Get("/open", s.handleOpen)
	r.Get("/events", s.hub.HandleWebSocket(func() stacknav.Frame { return s.App().Frame() }))

	r.Post("/navigate", s.handleNavigate)
	r.Post("/go", s.handleGo)
	r.Post("/close/{id}", s.handleClose)
	r.Post("/active/{id}", s.handleActive)
	r.Post("/query/{id}", s.handleUpdate(true))
	r.Post("/props/{id}", s.handleUpdate(false))
	r.Post("/back", s.handleTraverse(-1))
	r.Post("/forward", s.handleTraverse(1))
	r.Post("/resize", s.handleResize)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// =============================================================================
// Read Handlers
// =============================================================================

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, err := s.App().Machine().State()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON200(w, st)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	writeJSON200(w, s.App().Frame())
}

type routeInfo struct {
	Path      string          `json:"path"`
	Component router.Handle   `json:"component"`
	Layouts   []router.Layout `json:"layouts"`
	Params    []string        `json:"params"`
	Meta      router.Meta     `json:"meta"`
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	reg := s.App().Registry()
	routes := reg.Routes()
	out := make([]routeInfo, len(routes))
	for i, rt := range routes {
		layouts, _ := reg.RouteLayouts(rt.Path)
		params, _ := reg.ParamNames(rt.Path)
		out[i] = routeInfo{
			Path:      rt.Path,
			Component: rt.Component,
			Layouts:   layouts,
			Params:    params,
			Meta:      rt.Meta,
		}
	}
	writeJSON200(w, out)
}

type matchResponse struct {
	Found bool          `json:"found"`
	Match *router.Match `json:"match,omitempty"`
	Error router.Handle `json:"errorView,omitempty"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		s.writeError(w, errors.New("N002").WithDetail("missing path parameter"))
		return
	}

	reg := s.App().Registry()
	if m, ok := reg.Match(path); ok {
		writeJSON200(w, matchResponse{Found: true, Match: m})
		return
	}
	h, _ := reg.ErrorFor(path)
	writeJSON(w, http.StatusNotFound, matchResponse{Error: h})
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typ := q.Get("type")
	params := make(map[string]string)
	for k := range q {
		if k != "type" {
			params[k] = q.Get(k)
		}
	}
	writeJSON200(w, s.App().OpenViews(typ, params))
}

// =============================================================================
// Navigation Handlers
// =============================================================================

type navigateRequest struct {
	From   string          `json:"from"`
	Path   string          `json:"path"`
	Query  urlparam.Params `json:"query,omitempty"`
	Props  urlparam.Params `json:"props,omitempty"`
	Append bool            `json:"append,omitempty"`
	Target view.Target     `json:"target,omitempty"`
	Layout string          `json:"layout,omitempty"`
}

type navigateResponse struct {
	Outcome navigation.Outcome `json:"outcome"`
	Frame   stacknav.Frame     `json:"frame"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if !s.decode(w, r, &req) {
		return
	}

	var opts []navigation.NavigateOption
	if req.Append {
		opts = append(opts, navigation.WithAppend())
	}
	if req.Target != "" {
		opts = append(opts, navigation.WithTarget(req.Target))
	}
	if req.Props != nil {
		opts = append(opts, navigation.WithProps(req.Props))
	}
	if req.Layout != "" {
		opts = append(opts, navigation.WithLayout(req.Layout))
	}

	app := s.App()
	outcome, err := app.Machine().Navigate(req.From, req.Path, req.Query, opts...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON200(w, navigateResponse{Outcome: outcome, Frame: app.Frame()})
}

type goRequest struct {
	Href    string `json:"href"`
	Replace bool   `json:"replace,omitempty"`
}

func (s *Server) handleGo(w http.ResponseWriter, r *http.Request) {
	var req goRequest
	if !s.decode(w, r, &req) {
		return
	}

	app := s.App()
	outcome, err := app.Machine().Go(req.Href, req.Replace)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON200(w, navigateResponse{Outcome: outcome, Frame: app.Frame()})
}

type changeResponse struct {
	Changed bool           `json:"changed"`
	Frame   stacknav.Frame `json:"frame"`
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	s.withView(w, r, func(app *stacknav.App, id string) (bool, error) {
		return app.Machine().Close(id)
	})
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	s.withView(w, r, func(app *stacknav.App, id string) (bool, error) {
		return app.Machine().SetActive(id)
	})
}

type updateRequest struct {
	Params     urlparam.Params `json:"params"`
	ReplaceAll bool            `json:"replaceAll,omitempty"`
}

func (s *Server) handleUpdate(query bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateRequest
		if !s.decode(w, r, &req) {
			return
		}
		s.withView(w, r, func(app *stacknav.App, id string) (bool, error) {
			if query {
				return app.Machine().UpdateQueryParams(id, req.Params, req.ReplaceAll)
			}
			return app.Machine().UpdateProps(id, req.Params, req.ReplaceAll)
		})
	}
}

// withView runs f for the view named by the {id} URL parameter, answering
// 404 when the stack does not hold it.
func (s *Server) withView(w http.ResponseWriter, r *http.Request, f func(*stacknav.App, string) (bool, error)) {
	id := chi.URLParam(r, "id")
	app := s.App()

	st, err := app.Machine().State()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, ok := st.Find(id); !ok {
		s.writeError(w, errors.New("N001").WithDetailf("view %q", id))
		return
	}

	changed, err := f(app, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON200(w, changeResponse{Changed: changed, Frame: app.Frame()})
}

func (s *Server) handleTraverse(delta int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app := s.App()
		store, ok := app.Store().(*history.MemoryStore)
		if !ok {
			http.Error(w, "history store does not support traversal", http.StatusNotImplemented)
			return
		}
		moved := store.Go(delta)
		writeJSON200(w, changeResponse{Changed: moved, Frame: app.Frame()})
	}
}

type resizeRequest struct {
	Width float64 `json:"width"`
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Width <= 0 {
		http.Error(w, "width must be positive", http.StatusBadRequest)
		return
	}
	writeJSON200(w, s.App().Resize(req.Width))
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

type errorResponse struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		s.logger.Error("inspect: request failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch e.Code {
	case "N001":
		status = http.StatusNotFound
	case "N002":
		status = http.StatusBadRequest
	default:
		s.logger.Error("inspect: request failed", "code", e.Code, "error", err)
	}
	writeJSON(w, status, errorResponse{
		Code:       e.Code,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
	})
}

func writeJSON200(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
