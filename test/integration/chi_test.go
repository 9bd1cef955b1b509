package integration_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/verso-dev/verso"
	"github.com/verso-dev/verso/pkg/action"
	"github.com/verso-dev/verso/pkg/payload"
)

// TestUser represents an authenticated user for testing.
type TestUser struct {
	ID    string
	Email string
}

type userContextKey struct{}

// mockAuthMiddleware simulates an authentication middleware that runs in
// the host chi stack, outside Verso.
func mockAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer valid-token" {
			user := &TestUser{ID: "user-123", Email: "test@example.com"}
			r = r.WithContext(context.WithValue(r.Context(), userContextKey{}, user))
		}
		next.ServeHTTP(w, r)
	})
}

// TestChiRouterIntegration mounts a Verso app inside a chi router and
// verifies both route dispatch and the action endpoint work through the
// host stack, including context values set by chi middleware.
func TestChiRouterIntegration(t *testing.T) {
	app := verso.New(verso.DefaultConfig())

	app.Handle("/hello/:name", func(c *verso.Context) (*verso.Response, error) {
		return c.Text("hello " + c.Param("name")), nil
	})

	var actionUser *TestUser
	app.Action("whoami", func(ctx context.Context, inv *verso.Invocation) (any, error) {
		if val := ctx.Value(userContextKey{}); val != nil {
			actionUser = val.(*TestUser)
			return actionUser.Email, nil
		}
		return nil, verso.Unauthorized()
	})

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(mockAuthMiddleware)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Handle("/*", app)

	t.Run("chi routes still answer", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
			t.Errorf("health = %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("verso routes through the mount", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest("GET", "/hello/chi", nil))
		if rec.Body.String() != "hello chi" {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("actions see chi middleware context", func(t *testing.T) {
		req := httptest.NewRequest("POST", verso.DefaultActionConfig().Path, strings.NewReader(`[]`))
		req.Header.Set(action.Header, "whoami")
		req.Header.Set("Accept", payload.ContentType)
		req.Header.Set("Authorization", "Bearer valid-token")

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if actionUser == nil || actionUser.ID != "user-123" {
			t.Errorf("action saw user %+v, want the one set by chi middleware", actionUser)
		}
	})

	t.Run("anonymous action fails with the action's error", func(t *testing.T) {
		req := httptest.NewRequest("POST", verso.DefaultActionConfig().Path, strings.NewReader(`[]`))
		req.Header.Set(action.Header, "whoami")
		req.Header.Set("Accept", payload.ContentType)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500 for a failing action", rec.Code)
		}
	})
}
