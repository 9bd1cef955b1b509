package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// Response is the result of a dispatch: status, headers, and a body stream.
// Handlers build responses through the Context helpers or NewResponse and
// may rewrap the response returned by Next().
type Response struct {
	Status int
	Header http.Header
	Body   io.Reader
}

// ResponseOption adjusts a response under construction. All helper shapes
// (status-only, extra headers, both) normalize through the same options.
type ResponseOption func(*Response)

// WithStatus sets the response status code.
func WithStatus(code int) ResponseOption {
	return func(r *Response) {
		r.Status = code
	}
}

// WithHeader adds a header to the response.
func WithHeader(key, value string) ResponseOption {
	return func(r *Response) {
		r.Header.Add(key, value)
	}
}

// WithHeaders merges a header set into the response.
func WithHeaders(h http.Header) ResponseOption {
	return func(r *Response) {
		for key, values := range h {
			for _, v := range values {
				r.Header.Add(key, v)
			}
		}
	}
}

// NewResponse is the single internal response constructor every helper
// funnels through: a 200 response with the given body, then options.
func NewResponse(body io.Reader, opts ...ResponseOption) *Response {
	resp := &Response{
		Status: http.StatusOK,
		Header: make(http.Header),
		Body:   body,
	}
	for _, opt := range opts {
		opt(resp)
	}
	return resp
}

// JSON builds an application/json response from v.
func JSON(v any, opts ...ResponseOption) *Response {
	data, err := json.Marshal(v)
	if err != nil {
		return Text("internal error", WithStatus(http.StatusInternalServerError))
	}
	base := []ResponseOption{WithHeader("Content-Type", "application/json; charset=utf-8")}
	return NewResponse(bytes.NewReader(data), append(base, opts...)...)
}

// Text builds a text/plain response.
func Text(s string, opts ...ResponseOption) *Response {
	base := []ResponseOption{WithHeader("Content-Type", "text/plain; charset=utf-8")}
	return NewResponse(bytes.NewReader([]byte(s)), append(base, opts...)...)
}

// HTML builds a text/html response.
func HTML(s string, opts ...ResponseOption) *Response {
	base := []ResponseOption{WithHeader("Content-Type", "text/html; charset=utf-8")}
	return NewResponse(bytes.NewReader([]byte(s)), append(base, opts...)...)
}

// Write writes the response to w: headers first, then status, then body.
func (r *Response) Write(w http.ResponseWriter) error {
	for key, values := range r.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if r.Body == nil {
		return nil
	}
	_, err := io.Copy(w, r.Body)
	return err
}
