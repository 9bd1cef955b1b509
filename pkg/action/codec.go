package action

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"sync"
)

// refKey marks an argument value that must be resolved by reference from
// the temporary-references session instead of being decoded inline.
const refKey = "$ref"

// argsField is the multipart field carrying the JSON-encoded argument
// list; every other part becomes a temporary reference keyed by its
// field name.
const argsField = "args"

// TempRefs is the temporary-references session of one decode step: a
// request-scoped handle for data that cannot be fully serialized (file
// uploads, binary parts) and is resolved by reference while the same
// request is being processed.
type TempRefs struct {
	mu   sync.RWMutex
	refs map[string]any
}

// NewTempRefs creates an empty session.
func NewTempRefs() *TempRefs {
	return &TempRefs{refs: make(map[string]any)}
}

// Put stores a value under id.
func (t *TempRefs) Put(id string, v any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refs[id] = v
}

// Resolve returns the value stored under id.
func (t *TempRefs) Resolve(id string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.refs[id]
	return v, ok
}

// Len returns the number of stored references.
func (t *TempRefs) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.refs)
}

// DecodeTextArgs decodes a plain-text body into an argument list. The
// body is a JSON array; a single non-array document becomes a one-element
// list, and an empty body decodes to no arguments. {"$ref": id} objects
// are replaced with the referenced value.
func DecodeTextArgs(body []byte, refs *TempRefs) ([]any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var raw any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("action: decode arguments: %w", err)
	}

	list, ok := raw.([]any)
	if !ok {
		list = []any{raw}
	}
	return resolveRefs(list, refs), nil
}

// DecodeMultipartArgs decodes arguments from a multipart form. The
// argument list travels in the "args" field; files and any other fields
// are registered into the temporary-references session under their field
// names so {"$ref": name} placeholders inside the list resolve to them.
func DecodeMultipartArgs(form *multipart.Form, refs *TempRefs) ([]any, error) {
	if form == nil {
		return nil, nil
	}

	for name, headers := range form.File {
		if len(headers) == 1 {
			refs.Put(name, headers[0])
			continue
		}
		refs.Put(name, headers)
	}
	for name, values := range form.Value {
		if name == argsField {
			continue
		}
		if len(values) == 1 {
			refs.Put(name, values[0])
			continue
		}
		refs.Put(name, values)
	}

	encoded := form.Value[argsField]
	if len(encoded) == 0 {
		return nil, nil
	}
	return DecodeTextArgs([]byte(encoded[0]), refs)
}

// resolveRefs walks a decoded JSON value and substitutes reference
// placeholders. Unresolvable references stay as-is; the action decides
// what a dangling reference means.
func resolveRefs(list []any, refs *TempRefs) []any {
	for i, v := range list {
		list[i] = resolveValue(v, refs)
	}
	return list
}

func resolveValue(v any, refs *TempRefs) any {
	switch val := v.(type) {
	case map[string]any:
		if id, ok := val[refKey].(string); ok && len(val) == 1 {
			if resolved, found := refs.Resolve(id); found {
				return resolved
			}
			return val
		}
		for k, inner := range val {
			val[k] = resolveValue(inner, refs)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = resolveValue(inner, refs)
		}
		return val
	default:
		return v
	}
}
