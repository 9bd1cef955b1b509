package routestate

import (
	"context"
	"errors"
)

// ErrNoScope is returned by FromContext when no Storage is attached to the
// context, i.e. the caller is running outside an active request scope.
var ErrNoScope = errors.New("routestate: no active request scope")

type contextKey struct{}

// NewContext returns a context carrying the given Storage. Every call made
// with the returned context (or a descendant) resolves to the same Storage
// through FromContext.
func NewContext(ctx context.Context, s *Storage) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the Storage attached to ctx, or ErrNoScope when the
// context does not belong to an active request.
func FromContext(ctx context.Context) (*Storage, error) {
	s, ok := ctx.Value(contextKey{}).(*Storage)
	if !ok || s == nil {
		return nil, ErrNoScope
	}
	return s, nil
}

// MustFromContext is FromContext for call sites that cannot run outside a
// request scope. It panics with a clear message otherwise.
func MustFromContext(ctx context.Context) *Storage {
	s, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return s
}
