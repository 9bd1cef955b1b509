// Package verso provides the public API for the Verso web framework.
//
// This is the recommended import for most applications:
//
//	import "github.com/verso-dev/verso"
//
// Usage:
//
//	app := verso.New(verso.DefaultConfig())
//
//	app.Action("subscribe", func(ctx context.Context, inv *verso.Invocation) (any, error) {
//	    email := inv.Form.Get("email")
//	    if email == "" {
//	        return nil, verso.BadRequestf("email is required")
//	    }
//	    verso.Redirect(ctx, "/thanks", 0)
//	    return nil, nil
//	})
//
//	app.Handle("/hello/:name", func(c *verso.Context) (*verso.Response, error) {
//	    return c.Text("hello " + c.Param("name")), nil
//	})
//
//	app.Run(":8080")
package verso

import (
	"context"
	"net/http"

	"github.com/verso-dev/verso/pkg/action"
	"github.com/verso-dev/verso/pkg/router"
	"github.com/verso-dev/verso/pkg/routestate"
)

// Version is the framework version.
const Version = "0.3.0"

// =============================================================================
// Routing (re-export from pkg/router)
// =============================================================================

// Context is the per-dispatch bundle handed to a handler.
type Context = router.Context

// Response is a handler's answer.
type Response = router.Response

// Handler processes one dispatch.
type Handler = router.Handler

// ErrorHandler turns an escaped error into a response.
type ErrorHandler = router.ErrorHandler

// ResponseOption configures a Response.
type ResponseOption = router.ResponseOption

// WithStatus sets the response status code.
var WithStatus = router.WithStatus

// WithHeader adds one response header.
var WithHeader = router.WithHeader

// WithHeaders merges a header set into the response.
var WithHeaders = router.WithHeaders

// NewResponse builds a response from a body and options.
var NewResponse = router.NewResponse

// JSON responds with application/json.
var JSON = router.JSON

// Text responds with text/plain.
var Text = router.Text

// HTML responds with text/html.
var HTML = router.HTML

// =============================================================================
// Actions (re-export from pkg/action)
// =============================================================================

// Invocation carries one action call's decoded inputs.
type Invocation = action.Invocation

// ActionFunc is a registered server action.
type ActionFunc = action.Func

// TempRefs is the per-request temporary-references session.
type TempRefs = action.TempRefs

// =============================================================================
// Request-scoped storage helpers
// =============================================================================

// ErrNoScope is returned by storage helpers outside a request scope.
var ErrNoScope = routestate.ErrNoScope

// Redirect marks a pending redirect on the current request scope.
// Status 0 means 303 See Other. The last call wins.
func Redirect(ctx context.Context, url string, status int) error {
	st, err := routestate.FromContext(ctx)
	if err != nil {
		return err
	}
	st.SetRedirect(url, status)
	return nil
}

// RevalidatePath appends a path to the current request's revalidation
// list. Duplicates are preserved in order.
func RevalidatePath(ctx context.Context, path string) error {
	st, err := routestate.FromContext(ctx)
	if err != nil {
		return err
	}
	st.RevalidatePath(path, "")
	return nil
}

// SetCookie queues a cookie on the current request scope's pending
// response headers.
func SetCookie(ctx context.Context, cookie *http.Cookie) error {
	st, err := routestate.FromContext(ctx)
	if err != nil {
		return err
	}
	st.SetCookie(cookie)
	return nil
}

// DeleteCookie queues a cookie deletion on the current request scope.
func DeleteCookie(ctx context.Context, name string) error {
	st, err := routestate.FromContext(ctx)
	if err != nil {
		return err
	}
	st.DeleteCookie(name)
	return nil
}

// Cookie reads a request cookie from the current request scope.
func Cookie(ctx context.Context, name string) (*http.Cookie, error) {
	st, err := routestate.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return st.Cookie(name)
}
