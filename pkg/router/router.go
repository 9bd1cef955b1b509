// Package router implements an ordered pattern router with an explicit
// continuation-passing middleware chain.
//
// Routes are tried strictly in registration order; a matched handler
// receives a Context whose Next() resumes matching from the next
// registered route, so any route can also act as middleware (inspect the
// request, call Next, rewrap the response). When nothing matches, a
// configurable default handler runs. Errors and panics anywhere in the
// chain are caught once at the top and delegated to a configurable error
// handler.
package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
)

// Handler processes one dispatch and returns a response. Returning an
// error aborts the chain and reaches the router's error handler.
type Handler func(c *Context) (*Response, error)

// ErrorHandler turns an escaped error into a response. It receives a
// best-effort context: Request and State are usable, Next and Param fail
// loudly because there is no route context at error time. It must not
// fail itself; a nil return produces the router's fallback 500.
type ErrorHandler func(c *Context, err error) *Response

type route struct {
	// methods is nil for match-any registrations.
	methods map[string]struct{}
	pattern *Pattern
	handler Handler
}

// Router dispatches requests through an ordered route chain.
//
// Registration is append-only during setup. The route list freezes on the
// first dispatch; registering afterwards panics, which keeps the "routes
// are immutable while serving" invariant structural rather than
// conventional.
type Router struct {
	routes   []route
	notFound Handler
	onError  ErrorHandler
	logger   *slog.Logger

	serving atomic.Bool
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger used for escaped errors.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// New creates an empty router with a plain-text 404 default handler.
func New(opts ...Option) *Router {
	r := &Router{
		notFound: func(c *Context) (*Response, error) {
			return Text("404 Not Found", WithStatus(http.StatusNotFound)), nil
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle registers a handler for every HTTP method.
func (r *Router) Handle(pattern string, h Handler) *Router {
	return r.register(nil, pattern, h)
}

// Method registers a handler for a single HTTP method.
func (r *Router) Method(method, pattern string, h Handler) *Router {
	return r.register([]string{method}, pattern, h)
}

// Methods registers a handler for a set of HTTP methods.
func (r *Router) Methods(methods []string, pattern string, h Handler) *Router {
	return r.register(methods, pattern, h)
}

// Use appends middleware to the chain. Middleware are handlers registered
// against every method and path; they run in registration order relative
// to routes registered around them.
func (r *Router) Use(handlers ...Handler) *Router {
	for _, h := range handlers {
		r.register(nil, "/*", h)
	}
	return r
}

// SetNotFound replaces the default handler run when no route matches.
func (r *Router) SetNotFound(h Handler) {
	if h != nil {
		r.notFound = h
	}
}

// SetErrorHandler sets the handler for errors escaping the chain.
func (r *Router) SetErrorHandler(h ErrorHandler) {
	r.onError = h
}

func (r *Router) register(methods []string, pattern string, h Handler) *Router {
	if r.serving.Load() {
		panic("router: cannot register routes after serving has started")
	}
	if h == nil {
		panic("router: nil handler for " + pattern)
	}

	var set map[string]struct{}
	if len(methods) > 0 {
		set = make(map[string]struct{}, len(methods))
		for _, m := range methods {
			m = strings.ToUpper(strings.TrimSpace(m))
			if m == "" || m == "*" {
				set = nil
				break
			}
			set[m] = struct{}{}
		}
	}

	r.routes = append(r.routes, route{
		methods: set,
		pattern: MustCompile(pattern),
		handler: h,
	})
	return r
}

// Dispatch runs the chain for a request and always produces a response:
// escaped errors and panics are converted by the error handler.
// initialState seeds the chain-shared state record and may be nil.
func (r *Router) Dispatch(req *http.Request, initialState map[string]any) *Response {
	r.serving.Store(true)

	state := initialState
	if state == nil {
		state = make(map[string]any)
	}

	resp, err := r.safeDispatch(req, state)
	if err != nil {
		return r.handleError(req, state, err)
	}
	if resp == nil {
		return r.handleError(req, state, fmt.Errorf("router: handler returned no response"))
	}
	return resp
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	resp := r.Dispatch(req, nil)
	if err := resp.Write(w); err != nil && r.logger != nil {
		r.logger.Error("response write failed", "path", req.URL.Path, "error", err)
	}
}

func (r *Router) safeDispatch(req *http.Request, state map[string]any) (resp *Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = nil
			err = fmt.Errorf("router: panic in handler: %v", rec)
		}
	}()
	return r.dispatchFrom(0, req, state)
}

// dispatchFrom tries routes starting at index from; it is the shared
// implementation behind Dispatch and Context.Next.
func (r *Router) dispatchFrom(from int, req *http.Request, state map[string]any) (*Response, error) {
	for i := from; i < len(r.routes); i++ {
		rt := &r.routes[i]
		if !rt.matchesMethod(req.Method) {
			continue
		}
		params, ok := rt.pattern.Match(req.URL.Path)
		if !ok {
			continue
		}
		c := &Context{
			Request: req,
			URL:     req.URL,
			State:   state,
			params:  params,
			router:  r,
			index:   i,
		}
		return rt.handler(c)
	}

	c := &Context{
		Request: req,
		URL:     req.URL,
		State:   state,
		router:  r,
		index:   len(r.routes),
	}
	return r.notFound(c)
}

func (rt *route) matchesMethod(method string) bool {
	if rt.methods == nil {
		return true
	}
	_, ok := rt.methods[strings.ToUpper(method)]
	return ok
}

// handleError builds the best-effort context and runs the error handler.
func (r *Router) handleError(req *http.Request, state map[string]any, err error) *Response {
	if r.logger != nil {
		r.logger.Error("handler failed", "method", req.Method, "path", req.URL.Path, "error", err)
	}

	fallback := func() *Response {
		status := http.StatusInternalServerError
		if sc, ok := err.(interface{ StatusCode() int }); ok {
			status = sc.StatusCode()
		}
		return Text(http.StatusText(status), WithStatus(status))
	}

	if r.onError == nil {
		return fallback()
	}

	c := &Context{
		Request: req,
		URL:     req.URL,
		State:   state,
		router:  r,
		broken:  true,
	}
	resp := r.safeErrorHandler(c, err)
	if resp == nil {
		return fallback()
	}
	return resp
}

// safeErrorHandler shields Dispatch from a misbehaving error handler.
func (r *Router) safeErrorHandler(c *Context, err error) (resp *Response) {
	defer func() {
		if rec := recover(); rec != nil {
			if r.logger != nil {
				r.logger.Error("error handler panicked", "error", rec)
			}
			resp = nil
		}
	}()
	return r.onError(c, err)
}
