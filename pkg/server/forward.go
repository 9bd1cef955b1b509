package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/verso-dev/verso/pkg/action"
	"github.com/verso-dev/verso/pkg/headers"
	"github.com/verso-dev/verso/pkg/payload"
	"github.com/verso-dev/verso/pkg/router"
	"github.com/verso-dev/verso/pkg/routestate"
)

// forwardRedirect turns a pending redirect into a response. Three shapes:
//
//   - same-origin target, payload-aware caller: the target is fetched
//     server-side and its payload streamed back under status 200, so the
//     client applies the redirect without a second round trip;
//   - cross-origin target: empty body with custom location/status headers,
//     because an HTTP redirect cannot carry the caller's payload
//     processing across a hard navigation boundary;
//   - same-origin target, plain-HTML caller: a standard HTTP redirect.
//
// A failed or non-payload proxied fetch falls back to the plain redirect,
// never to an error.
func (e *Endpoint) forwardRedirect(req *http.Request, st *routestate.Storage, snap routestate.State) *router.Response {
	pending := st.ResponseHeader()

	target, err := url.Parse(snap.Redirect.URL)
	if err != nil {
		e.logger.Warn("unparseable redirect target", "url", snap.Redirect.URL, "error", err)
		return plainRedirect(snap.Redirect.URL, snap.Redirect.Status, pending)
	}

	if !isSameOrigin(req, target) {
		h := cloneHeader(pending)
		h.Set(LocationHeader, target.String())
		h.Set(StatusHeader, strconv.Itoa(snap.Redirect.Status))
		return router.NewResponse(nil,
			router.WithStatus(http.StatusOK),
			router.WithHeaders(h))
	}

	if acceptsPayload(req) {
		if resp := e.proxyRedirect(req, pending, snap, target); resp != nil {
			return resp
		}
	}

	return plainRedirect(resolveTarget(req, target).String(), snap.Redirect.Status, pending)
}

// proxyRedirect performs the server-side GET of a same-origin redirect
// target. It returns nil when the attempt must fall back to a plain
// redirect; the in-flight fetch is cancelled in that case so no upstream
// connection is held without a consumer.
func (e *Endpoint) proxyRedirect(req *http.Request, pending http.Header, snap routestate.State, target *url.URL) *router.Response {
	ctx, cancel := context.WithCancel(req.Context())

	abs := resolveTarget(req, target)
	proxied, err := http.NewRequestWithContext(ctx, http.MethodGet, abs.String(), nil)
	if err != nil {
		cancel()
		return nil
	}

	fwd := headers.Merge(req.Header, pending)
	fwd.Del("Transfer-Encoding")
	// Without this the proxied request would be misidentified as another
	// action call.
	fwd.Del(action.Header)
	proxied.Header = fwd

	resp, err := e.client.Do(proxied)
	if err != nil {
		e.logger.Warn("redirect forwarding fetch failed", "target", abs.String(), "error", err)
		cancel()
		return nil
	}
	if !payload.IsPayloadResponse(resp.Header.Get("Content-Type")) {
		resp.Body.Close()
		cancel()
		return nil
	}

	out := make(http.Header)
	for key, values := range resp.Header {
		if key == "Set-Cookie" {
			continue
		}
		out[key] = append([]string(nil), values...)
	}
	// Both cookie sets survive; on a name collision the proxied page's
	// entry wins, it is the fresher render.
	for _, v := range headers.MergeSetCookies(pending, resp.Header) {
		out.Add("Set-Cookie", v)
	}
	if len(snap.Revalidations) > 0 {
		if encoded, err := json.Marshal(snap.Revalidations); err == nil {
			out.Set(RevalidateHeader, string(encoded))
		}
	}
	out.Set(LocationHeader, originStripped(target))

	// Status 200, not the redirect status: the payload-aware client
	// applies the redirect itself without losing the streamed content.
	return router.NewResponse(&cancelOnCloseBody{rc: resp.Body, cancel: cancel},
		router.WithStatus(http.StatusOK),
		router.WithHeaders(out))
}

func plainRedirect(location string, status int, pending http.Header) *router.Response {
	h := cloneHeader(pending)
	h.Set("Location", location)
	return router.NewResponse(nil,
		router.WithStatus(status),
		router.WithHeaders(h))
}

// isSameOrigin reports whether target stays on the request's origin.
// Relative targets always do.
func isSameOrigin(req *http.Request, target *url.URL) bool {
	if target.Host == "" && target.Scheme == "" {
		return true
	}
	if target.Host != req.Host {
		return false
	}
	return target.Scheme == "" || target.Scheme == requestScheme(req)
}

func requestScheme(req *http.Request) string {
	if req.TLS != nil {
		return "https"
	}
	return "http"
}

// resolveTarget turns a possibly relative target into an absolute URL on
// the request's origin.
func resolveTarget(req *http.Request, target *url.URL) *url.URL {
	if target.Host != "" {
		return target
	}
	abs := *target
	abs.Scheme = requestScheme(req)
	abs.Host = req.Host
	return &abs
}

// originStripped returns the origin-relative form of the target.
func originStripped(target *url.URL) string {
	rel := *target
	rel.Scheme = ""
	rel.Host = ""
	rel.User = nil
	if rel.Path == "" {
		rel.Path = "/"
	}
	return rel.String()
}

func cloneHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for key, values := range h {
		out[key] = append([]string(nil), values...)
	}
	return out
}

// cancelOnCloseBody releases the proxied fetch's context once the body
// has been fully consumed or abandoned.
type cancelOnCloseBody struct {
	rc     io.ReadCloser
	cancel context.CancelFunc
	done   bool
}

func (b *cancelOnCloseBody) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	if err != nil && !b.done {
		b.done = true
		b.rc.Close()
		b.cancel()
	}
	return n, err
}

func (b *cancelOnCloseBody) Close() error {
	if b.done {
		return nil
	}
	b.done = true
	err := b.rc.Close()
	b.cancel()
	return err
}
