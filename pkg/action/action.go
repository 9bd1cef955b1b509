// Package action implements server-action registration and invocation.
//
// An action is a named server-side procedure a client invokes either as a
// fetch-style call (POST tagged with the action-id header) or as a
// progressively-enhanced form submission (POST whose form data embeds an
// action reference). Process decodes the invocation, runs the action
// exactly once, and captures its outcome; it never constructs an HTTP
// response — that is the endpoint's job.
package action

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

const (
	// Header is the request header carrying the action id of a
	// fetch-style call.
	Header = "X-Verso-Action"

	// FormField is the form field carrying the embedded action reference
	// of a progressive-enhancement submission.
	FormField = "_verso_action"
)

// maxBodyBytes bounds action request bodies (form and text alike).
const maxBodyBytes = 10 << 20

// Func is a registered server action. Args carries the decoded
// invocation; a returned error marks the action as failed without ever
// becoming a transport error.
type Func func(ctx context.Context, inv *Invocation) (any, error)

// Invocation is the decoded input of one action call.
type Invocation struct {
	// Args are the decoded arguments of a fetch-style call.
	Args []any

	// Form holds the submitted values of a form-style call.
	Form url.Values

	// Refs is the temporary-references session established while decoding.
	Refs *TempRefs
}

// Result is a captured action outcome. OK is false when the action
// returned an error or panicked; Data then carries the error message.
type Result struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

// FormState is what a resubmitted form needs to restore field-level
// state after a form-style action ran.
type FormState struct {
	Values map[string]string `json:"values,omitempty"`
	Result any               `json:"result,omitempty"`
}

// Processed is the outcome of Process, consumed exactly once by the
// response assembler.
type Processed struct {
	// IsAction is false for non-POST requests and for POSTs that carry
	// no resolvable action reference.
	IsAction bool

	// ReturnValue is set for fetch-style calls.
	ReturnValue *Result

	// FormState is set for successful form-style calls.
	FormState *FormState

	// Status is an HTTP status override (500 after an action failure),
	// zero when no override applies.
	Status int

	// Refs is the temporary-references session of the decode step.
	Refs *TempRefs
}

// Registry holds the registered actions. Registration happens during
// startup; lookup is concurrent-safe.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Func
	logger  *slog.Logger
}

// NewRegistry creates an empty registry. logger may be nil.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		actions: make(map[string]Func),
		logger:  logger,
	}
}

// Register adds an action under the given id. Re-registering an id
// replaces the previous action.
func (r *Registry) Register(id string, fn Func) {
	if id == "" || fn == nil {
		panic("action: empty id or nil func")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[id] = fn
}

// Lookup returns the action registered under id.
func (r *Registry) Lookup(id string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.actions[id]
	return fn, ok
}

// Process inspects the request and, when it carries an action invocation,
// decodes it and runs the target exactly once. The returned error is
// reserved for malformed request bodies; action failures are captured in
// the Processed value instead.
func (r *Registry) Process(ctx context.Context, req *http.Request) (*Processed, error) {
	if req.Method != http.MethodPost {
		return &Processed{}, nil
	}

	if id := req.Header.Get(Header); id != "" {
		return r.processFetch(ctx, req, id)
	}
	return r.processForm(ctx, req)
}

// processFetch handles a fetch-style call: the body carries encoded
// arguments, the header names the target.
func (r *Registry) processFetch(ctx context.Context, req *http.Request, id string) (*Processed, error) {
	inv, err := decodeFetchBody(req)
	if err != nil {
		return nil, err
	}

	out := &Processed{IsAction: true, Refs: inv.Refs}

	fn, ok := r.Lookup(id)
	if !ok {
		r.logger.Warn("unknown action id", "id", id)
		out.ReturnValue = &Result{OK: false, Data: fmt.Sprintf("unknown action %q", id)}
		out.Status = http.StatusInternalServerError
		return out, nil
	}

	ret, err := r.invoke(ctx, id, fn, inv)
	if err != nil {
		out.ReturnValue = &Result{OK: false, Data: err.Error()}
		out.Status = http.StatusInternalServerError
		return out, nil
	}
	out.ReturnValue = &Result{OK: true, Data: ret}
	return out, nil
}

// processForm handles a progressive-enhancement submission. A POST whose
// form data carries no resolvable action reference is not an action and
// must be handled as an ordinary POST by the caller.
func (r *Registry) processForm(ctx context.Context, req *http.Request) (*Processed, error) {
	form, err := parseRequestForm(req)
	if err != nil {
		return nil, err
	}

	id := form.Get(FormField)
	if id == "" {
		return &Processed{}, nil
	}
	fn, ok := r.Lookup(id)
	if !ok {
		// Present but unresolvable falls through to ordinary POST
		// handling rather than surfacing a malformed-action error.
		r.logger.Debug("unresolvable form action reference", "id", id)
		return &Processed{}, nil
	}

	values := form
	values.Del(FormField)

	inv := &Invocation{Form: values, Refs: NewTempRefs()}
	ret, err := r.invoke(ctx, id, fn, inv)
	if err != nil {
		// No generic way to surface arbitrary errors to a plain form
		// submission; a bare status override is all the client gets.
		return &Processed{IsAction: true, Status: http.StatusInternalServerError}, nil
	}

	return &Processed{
		IsAction: true,
		FormState: &FormState{
			Values: flattenValues(values),
			Result: ret,
		},
	}, nil
}

// invoke runs an action, converting panics into failures so user code can
// never take down the request.
func (r *Registry) invoke(ctx context.Context, id string, fn Func, inv *Invocation) (ret any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("action panicked", "id", id, "panic", rec)
			ret = nil
			err = fmt.Errorf("action %q panicked: %v", id, rec)
		}
	}()
	ret, err = fn(ctx, inv)
	if err != nil {
		r.logger.Warn("action failed", "id", id, "error", err)
	}
	return ret, err
}

// decodeFetchBody parses a fetch-style body: multipart form data when the
// content type says so, plain text otherwise.
func decodeFetchBody(req *http.Request) (*Invocation, error) {
	refs := NewTempRefs()

	mt, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mt == "multipart/form-data" {
		if err := req.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, fmt.Errorf("action: parse multipart body: %w", err)
		}
		args, err := DecodeMultipartArgs(req.MultipartForm, refs)
		if err != nil {
			return nil, err
		}
		return &Invocation{Args: args, Refs: refs}, nil
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("action: read body: %w", err)
	}
	args, err := DecodeTextArgs(body, refs)
	if err != nil {
		return nil, err
	}
	return &Invocation{Args: args, Refs: refs}, nil
}

// parseRequestForm parses url-encoded or multipart form data.
func parseRequestForm(req *http.Request) (url.Values, error) {
	mt, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mt == "multipart/form-data" {
		if err := req.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, fmt.Errorf("action: parse multipart form: %w", err)
		}
		values := make(url.Values, len(req.MultipartForm.Value))
		for key, vs := range req.MultipartForm.Value {
			values[key] = append([]string(nil), vs...)
		}
		return values, nil
	}

	if err := req.ParseForm(); err != nil {
		return nil, fmt.Errorf("action: parse form: %w", err)
	}
	return req.PostForm, nil
}

func flattenValues(values url.Values) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for key, vs := range values {
		if strings.HasPrefix(key, "_verso_") {
			continue
		}
		if len(vs) > 0 {
			out[key] = vs[0]
		}
	}
	return out
}
