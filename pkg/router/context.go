package router

import (
	"context"
	"net/http"
	"net/url"
)

// Context is the per-dispatch bundle handed to a handler: the request, the
// pattern captures for the matched route, the state record shared across
// the whole chain for one request, and the Next continuation.
//
// A fresh Context exists at each matched route in the chain; only State
// and the request are shared between them.
type Context struct {
	// Request is the original incoming request.
	Request *http.Request

	// URL is the parsed request URL.
	URL *url.URL

	// State is mutable and shared by every handler in the chain for one
	// request.
	State map[string]any

	params map[string]string

	router *Router
	// index is the position of the matched route; Next continues from
	// index+1.
	index int

	// broken marks the best-effort context handed to the error handler,
	// where Next and Param have no route to stand on.
	broken bool
}

// Param returns the named capture from the matched pattern.
func (c *Context) Param(key string) string {
	if c.broken {
		panic("router: Param is not available in the error handler")
	}
	return c.params[key]
}

// Params returns all named captures.
func (c *Context) Params() map[string]string {
	if c.broken {
		panic("router: Params is not available in the error handler")
	}
	return c.params
}

// Query returns the first query parameter for key.
func (c *Context) Query(key string) string {
	return c.URL.Query().Get(key)
}

// Context returns the request's context.
func (c *Context) Context() context.Context {
	return c.Request.Context()
}

// WithContext swaps the underlying request context, so handlers can push
// request-scoped values to everything downstream of this dispatch.
func (c *Context) WithContext(ctx context.Context) {
	c.Request = c.Request.WithContext(ctx)
}

// Next invokes the remaining chain, starting from the next registered
// route, and returns its eventual response. If nothing further matches,
// the router's default handler runs.
func (c *Context) Next() (*Response, error) {
	if c.broken {
		panic("router: Next is not available in the error handler")
	}
	return c.router.dispatchFrom(c.index+1, c.Request, c.State)
}

// JSON responds with application/json.
func (c *Context) JSON(v any, opts ...ResponseOption) *Response {
	return JSON(v, opts...)
}

// Text responds with text/plain.
func (c *Context) Text(s string, opts ...ResponseOption) *Response {
	return Text(s, opts...)
}

// HTML responds with text/html.
func (c *Context) HTML(s string, opts ...ResponseOption) *Response {
	return HTML(s, opts...)
}
