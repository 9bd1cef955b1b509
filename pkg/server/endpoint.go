// Package server assembles HTTP responses for the action endpoint.
//
// The endpoint owns the full per-request lifecycle: it creates the
// request-scoped storage, runs the action processor, and turns the
// processor's outcome plus the accumulated navigation intent into a
// concrete response — a streamed payload, an HTTP redirect, or a
// server-side forwarded redirect (see forward.go).
package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/verso-dev/verso/pkg/action"
	"github.com/verso-dev/verso/pkg/payload"
	"github.com/verso-dev/verso/pkg/router"
	"github.com/verso-dev/verso/pkg/routestate"
)

// Response headers of the redirect-forwarding protocol.
const (
	// RevalidateHeader carries the JSON-encoded list of paths to
	// revalidate.
	RevalidateHeader = "X-Verso-Revalidate"

	// LocationHeader carries the redirect target path (origin stripped)
	// so a payload-aware client can update its address bar without a
	// navigation.
	LocationHeader = "X-Verso-Location"

	// StatusHeader carries the redirect status on the cross-origin
	// branch, where the client performs the navigation itself.
	StatusHeader = "X-Verso-Status"
)

// Query flags forcing one side of the content negotiation, for debugging.
const (
	forceHTMLFlag    = "__html"
	forcePayloadFlag = "__payload"
)

// Endpoint processes action requests for one route.
type Endpoint struct {
	actions *action.Registry
	codec   payload.Codec
	client  *http.Client
	logger  *slog.Logger
}

// EndpointOption configures an Endpoint.
type EndpointOption func(*Endpoint)

// WithCodec replaces the payload codec.
func WithCodec(codec payload.Codec) EndpointOption {
	return func(e *Endpoint) {
		e.codec = codec
	}
}

// WithClient replaces the HTTP client used for forwarded redirects.
func WithClient(client *http.Client) EndpointOption {
	return func(e *Endpoint) {
		e.client = client
	}
}

// WithLogger sets the endpoint logger.
func WithLogger(logger *slog.Logger) EndpointOption {
	return func(e *Endpoint) {
		e.logger = logger
	}
}

// NewEndpoint creates an endpoint over the given action registry.
func NewEndpoint(actions *action.Registry, opts ...EndpointOption) *Endpoint {
	e := &Endpoint{
		actions: actions,
		codec:   payload.JSONCodec{},
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handler returns the route handler for the action endpoint.
func (e *Endpoint) Handler() router.Handler {
	return func(c *router.Context) (*router.Response, error) {
		respHeader := make(http.Header)
		st := routestate.New(c.Request, respHeader)

		// Everything below this dispatch — the action itself included —
		// resolves the same storage through the request context.
		c.WithContext(routestate.NewContext(c.Context(), st))

		// The page that triggered the action is revalidated by default.
		st.RevalidatePath(refererPath(c.Request), "")

		processed, err := e.actions.Process(c.Context(), c.Request)
		if err != nil {
			e.logger.Warn("action decode failed", "path", c.URL.Path, "error", err)
			return c.Text("400 Bad Request", router.WithStatus(http.StatusBadRequest)), nil
		}

		if !processed.IsAction {
			return c.Text("not an action request",
				router.WithStatus(http.StatusBadRequest),
				router.WithHeaders(respHeader)), nil
		}

		if snap := st.Snapshot(); snap.Redirect != nil {
			return e.forwardRedirect(c.Request, st, snap), nil
		}

		return e.payloadResponse(processed, respHeader), nil
	}
}

// payloadResponse serializes the processed outcome into the opaque
// streaming payload.
func (e *Endpoint) payloadResponse(processed *action.Processed, respHeader http.Header) *router.Response {
	env := &payload.Envelope{}
	if processed.ReturnValue != nil {
		env.ReturnValue = processed.ReturnValue
	}
	if processed.FormState != nil {
		env.FormState = processed.FormState
	}

	var buf bytes.Buffer
	if err := e.codec.Encode(&buf, env); err != nil {
		e.logger.Error("payload encode failed", "error", err)
		return router.Text("500 Internal Server Error", router.WithStatus(http.StatusInternalServerError))
	}

	status := http.StatusOK
	if processed.Status != 0 {
		status = processed.Status
	}
	return router.NewResponse(&buf,
		router.WithStatus(status),
		router.WithHeaders(respHeader),
		router.WithHeader("Content-Type", e.codec.ContentType()))
}

// acceptsPayload reports whether the caller understands the streaming
// payload format. Debug query flags override the Accept header.
func acceptsPayload(req *http.Request) bool {
	q := req.URL.Query()
	if q.Has(forceHTMLFlag) {
		return false
	}
	if q.Has(forcePayloadFlag) {
		return true
	}
	return payload.Accepts(req.Header.Get("Accept"))
}

// refererPath extracts the path of the page that triggered the request.
// Absent or unparseable referers default to "/".
func refererPath(req *http.Request) string {
	ref := req.Header.Get("Referer")
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}
