package router

import (
	"sort"
	"strings"

	"github.com/vango-dev/stacknav/internal/errors"
	"github.com/vango-dev/stacknav/pkg/routepath"
)

// compiledRoute is a registered route with its matcher and resolved layout
// chain.
type compiledRoute struct {
	route   Route
	pattern *pattern
	layouts []Layout
}

// Registry resolves paths to components, layout chains and error views.
// It is immutable after New and safe for concurrent use.
type Registry struct {
	opts       options
	routes     []*compiledRoute
	byPath     map[string]int
	layouts    map[string]Handle // normalized "path" or "path#variant"
	errorViews map[string]Handle // normalized path
}

// New compiles cfg into a Registry.
//
// Malformed input (an empty path, a path not starting with "/", a missing
// component, an invalid capture) fails New in strict mode and is skipped
// with a warning otherwise. Duplicate paths follow the duplicate policy.
func New(cfg Config, opts ...Option) (*Registry, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{
		opts:       o,
		byPath:     make(map[string]int),
		layouts:    make(map[string]Handle),
		errorViews: make(map[string]Handle),
	}

	if err := r.registerLayouts(cfg.Layouts); err != nil {
		return nil, err
	}
	if err := r.registerErrors(cfg.Errors); err != nil {
		return nil, err
	}
	for _, route := range cfg.Routes {
		if err := r.registerRoute(route); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// reject fails registration in strict mode and logs in lenient mode.
func (r *Registry) reject(err *errors.Error) error {
	if r.opts.strict {
		return err
	}
	r.opts.logger.Warn("router: skipping registration",
		"code", err.Code,
		"error", err.Message,
		"detail", err.Detail,
	)
	return nil
}

func (r *Registry) registerLayouts(layouts map[string]Handle) error {
	for _, key := range sortedKeys(layouts) {
		path, variant, hasVariant := strings.Cut(key, "#")
		if !strings.HasPrefix(path, routepath.Separator) {
			if err := r.reject(errors.New("R002").WithDetailf("layout %q", key)); err != nil {
				return err
			}
			continue
		}
		if layouts[key] == "" {
			if err := r.reject(errors.New("R006").WithDetailf("layout %q", key)); err != nil {
				return err
			}
			continue
		}
		norm := routepath.Normalize(path)
		if hasVariant {
			norm += "#" + variant
		}
		r.layouts[norm] = layouts[key]
	}
	return nil
}

func (r *Registry) registerErrors(handlers map[string]Handle) error {
	for _, path := range sortedKeys(handlers) {
		if !strings.HasPrefix(path, routepath.Separator) {
			if err := r.reject(errors.New("R002").WithDetailf("error handler %q", path)); err != nil {
				return err
			}
			continue
		}
		if handlers[path] == "" {
			if err := r.reject(errors.New("R006").WithDetailf("error handler %q", path)); err != nil {
				return err
			}
			continue
		}
		r.errorViews[routepath.Normalize(path)] = handlers[path]
	}
	return nil
}

func (r *Registry) registerRoute(route Route) error {
	switch {
	case route.Path == "":
		return r.reject(errors.New("R001").WithDetailf("component %q", route.Component))
	case !strings.HasPrefix(route.Path, routepath.Separator):
		return r.reject(errors.New("R002").
			WithDetailf("route %q", route.Path).
			WithSuggestion(`Write the route as "/` + route.Path + `".`))
	case route.Component == "":
		return r.reject(errors.New("R003").WithDetailf("route %q", route.Path))
	case strings.ContainsAny(route.Path, "?#"):
		return r.reject(errors.New("R005").WithDetailf("route %q contains a query or fragment", route.Path))
	}

	path := routepath.Normalize(route.Path)
	pat, err := compilePattern(path)
	if err != nil {
		return r.reject(errors.New("R005").WithDetailf("route %q", route.Path).Wrap(err))
	}

	cr := &compiledRoute{route: route, pattern: pat}
	cr.route.Path = path
	if route.Layouts != nil {
		cr.layouts = make([]Layout, len(route.Layouts))
		for i, h := range route.Layouts {
			cr.layouts[i] = Layout{Component: h}
		}
	} else {
		cr.layouts = r.deriveLayouts(path)
	}

	if i, dup := r.byPath[path]; dup {
		switch r.opts.duplicates {
		case DuplicateReject:
			return errors.New("R004").WithDetail(path)
		case DuplicateFirstWins:
			r.opts.logger.Debug("router: ignoring duplicate route", "path", path)
		default:
			r.opts.logger.Debug("router: replacing duplicate route", "path", path)
			r.routes[i] = cr
		}
		return nil
	}

	r.byPath[path] = len(r.routes)
	r.routes = append(r.routes, cr)
	return nil
}

// deriveLayouts collects the layout chain of a route pattern: at each
// prefix from the root, the unnamed layout then its variants in lexical
// order.
func (r *Registry) deriveLayouts(path string) []Layout {
	var chain []Layout
	for _, prefix := range routepath.Prefixes(path) {
		if h, ok := r.layouts[prefix]; ok {
			chain = append(chain, Layout{Component: h})
		}
		var variants []string
		for key := range r.layouts {
			if rest, ok := strings.CutPrefix(key, prefix+"#"); ok {
				variants = append(variants, rest)
			}
		}
		sort.Strings(variants)
		for _, v := range variants {
			chain = append(chain, Layout{Key: v, Component: r.layouts[prefix+"#"+v]})
		}
	}
	return chain
}

// Match resolves path to its route. The base path is stripped first; query
// and fragment are ignored, as is a single trailing "/". Routes are tested
// in registration order and the first match wins.
func (r *Registry) Match(path string) (*Match, bool) {
	segments := routepath.Split(r.StripBasePath(path))
	for _, cr := range r.routes {
		params, ok := cr.pattern.match(segments)
		if !ok {
			continue
		}
		return &Match{
			Pattern:   cr.route.Path,
			Component: cr.route.Component,
			Layouts:   append([]Layout(nil), cr.layouts...),
			Params:    params,
			Meta:      cr.route.Meta,
		}, true
	}
	return nil, false
}

// ErrorFor returns the error view for path: the handler registered for the
// path itself, else the nearest one registered for an ancestor.
func (r *Registry) ErrorFor(path string) (Handle, bool) {
	p := r.StripBasePath(path)
	for {
		if h, ok := r.errorViews[p]; ok {
			return h, true
		}
		parent, ok := routepath.Parent(p)
		if !ok {
			return "", false
		}
		p = parent
	}
}

// BasePath returns the normalized base path.
func (r *Registry) BasePath() string {
	return r.opts.basePath
}

// FullPath prefixes routePath with the base path unless it already carries
// it. Query and fragment are kept.
func (r *Registry) FullPath(routePath string) string {
	return routepath.JoinBase(r.opts.basePath, routePath)
}

// StripBasePath removes the base path from an inbound path.
func (r *Registry) StripBasePath(path string) string {
	return routepath.StripBase(r.opts.basePath, path)
}

// PathFromURL returns the route path of a relative or absolute URL.
func (r *Registry) PathFromURL(raw string) string {
	return routepath.FromURL(r.opts.basePath, raw)
}

// Routes returns the registered routes in matching order.
func (r *Registry) Routes() []Route {
	out := make([]Route, len(r.routes))
	for i, cr := range r.routes {
		out[i] = cr.route
	}
	return out
}

// RouteLayouts returns the resolved layout chain of a registered pattern.
func (r *Registry) RouteLayouts(pattern string) ([]Layout, bool) {
	i, ok := r.byPath[routepath.Normalize(pattern)]
	if !ok {
		return nil, false
	}
	return append([]Layout(nil), r.routes[i].layouts...), true
}

// ParamNames returns the capture names of a registered pattern in
// declaration order.
func (r *Registry) ParamNames(pattern string) ([]string, bool) {
	i, ok := r.byPath[routepath.Normalize(pattern)]
	if !ok {
		return nil, false
	}
	return append([]string(nil), r.routes[i].pattern.paramNames...), true
}

// Len returns the number of registered routes.
func (r *Registry) Len() int {
	return len(r.routes)
}

func sortedKeys(m map[string]Handle) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
