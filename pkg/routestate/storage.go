// Package routestate tracks per-request navigation intent for the action
// endpoint: the pending redirect, the ordered list of paths to revalidate,
// and the response headers accumulated while a request is being processed.
//
// Exactly one Storage is live per request. Handlers and server actions
// reach it through the request's context.Context (see NewContext and
// FromContext) instead of threading it through every call.
package routestate

import (
	"net/http"
	"sync"
	"time"
)

// DefaultRedirectStatus is used when a redirect is requested without an
// explicit status code.
const DefaultRedirectStatus = http.StatusSeeOther

// Redirect is a pending redirect requested during request processing.
type Redirect struct {
	URL    string
	Status int
}

// Revalidation marks a path whose cached rendering should be refreshed as a
// consequence of this request.
type Revalidation struct {
	Path string `json:"path"`
	Type string `json:"type,omitempty"`
}

// State is the accumulated navigation intent of one request: what should
// happen as a result of this request besides returning data.
type State struct {
	Redirect      *Redirect
	Revalidations []Revalidation
}

// Storage is the per-request record. It owns the pending State and shares
// the mutable response header collection with the response writer.
type Storage struct {
	req        *http.Request
	respHeader http.Header
	created    time.Time

	mu    sync.Mutex
	state State
}

// New creates a Storage for the given request. respHeader is the live
// response header collection; writes through the cookie helpers land there.
func New(r *http.Request, respHeader http.Header) *Storage {
	if respHeader == nil {
		respHeader = make(http.Header)
	}
	return &Storage{
		req:        r,
		respHeader: respHeader,
		created:    time.Now(),
	}
}

// Request returns the originating request.
func (s *Storage) Request() *http.Request { return s.req }

// ResponseHeader returns the shared mutable response header collection.
func (s *Storage) ResponseHeader() http.Header { return s.respHeader }

// Created returns the creation timestamp of this record.
func (s *Storage) Created() time.Time { return s.created }

// SetRedirect records a pending redirect. The last call wins; status 0
// means DefaultRedirectStatus.
func (s *Storage) SetRedirect(url string, status int) {
	if status == 0 {
		status = DefaultRedirectStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Redirect = &Redirect{URL: url, Status: status}
}

// RevalidatePath appends a revalidation entry. Calls accumulate in order;
// duplicates are preserved.
func (s *Storage) RevalidatePath(path, typ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Revalidations = append(s.state.Revalidations, Revalidation{Path: path, Type: typ})
}

// Snapshot returns a deep copy of the current state. Mutating the returned
// value never affects the live state.
func (s *Storage) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := State{}
	if s.state.Redirect != nil {
		r := *s.state.Redirect
		snap.Redirect = &r
	}
	if len(s.state.Revalidations) > 0 {
		snap.Revalidations = make([]Revalidation, len(s.state.Revalidations))
		copy(snap.Revalidations, s.state.Revalidations)
	}
	return snap
}
