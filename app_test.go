package verso

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verso-dev/verso/pkg/action"
	"github.com/verso-dev/verso/pkg/payload"
	"github.com/verso-dev/verso/pkg/router"
)

func TestAppRoutesAndActions(t *testing.T) {
	app := New(DefaultConfig())

	app.Handle("/hello/:name", func(c *Context) (*Response, error) {
		return c.Text("hello " + c.Param("name")), nil
	})
	app.Action("echo", func(ctx context.Context, inv *Invocation) (any, error) {
		return inv.Args[0], nil
	})

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/hello/ada", nil))
	if rr.Body.String() != "hello ada" {
		t.Errorf("body = %q", rr.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, DefaultActionConfig().Path, strings.NewReader(`["ping"]`))
	req.Header.Set(action.Header, "echo")
	req.Header.Set("Accept", payload.ContentType)

	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("action status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != payload.ContentType {
		t.Errorf("Content-Type = %q, want payload", ct)
	}
}

func TestAppActionRedirectThroughScopeHelpers(t *testing.T) {
	app := New(DefaultConfig())
	app.Action("go", func(ctx context.Context, inv *Invocation) (any, error) {
		if err := SetCookie(ctx, &http.Cookie{Name: "flash", Value: "done"}); err != nil {
			return nil, err
		}
		return nil, Redirect(ctx, "/after", 0)
	})

	req := httptest.NewRequest(http.MethodPost, DefaultActionConfig().Path, strings.NewReader(`[]`))
	req.Header.Set(action.Header, "go")
	req.Header.Set("Accept", "text/html")

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if sc := rr.Header().Get("Set-Cookie"); !strings.Contains(sc, "flash=done") {
		t.Errorf("Set-Cookie = %q", sc)
	}
}

func TestAppMiddlewareWrapsActionEndpoint(t *testing.T) {
	app := New(DefaultConfig())

	var sawAction bool
	app.Use(func(c *Context) (*Response, error) {
		if c.URL.Path == app.Config().Action.Path {
			sawAction = true
		}
		return c.Next()
	})
	app.Action("noop", func(ctx context.Context, inv *Invocation) (any, error) {
		return nil, nil
	})

	req := httptest.NewRequest(http.MethodPost, DefaultActionConfig().Path, strings.NewReader(`[]`))
	req.Header.Set(action.Header, "noop")
	req.Header.Set("Accept", payload.ContentType)

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	if !sawAction {
		t.Error("middleware registered after New should still wrap the action endpoint")
	}
}

func TestAppHTTPErrorStatusSurfaces(t *testing.T) {
	app := New(DefaultConfig())
	app.Handle("/admin", func(c *Context) (*Response, error) {
		return nil, Forbidden()
	})

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 from HTTPError", rr.Code)
	}
}

func TestAppDevModeInjectsReloadClient(t *testing.T) {
	publicDir := t.TempDir()
	html := "<html><body><h1>hi</h1></body></html>"
	if err := os.WriteFile(filepath.Join(publicDir, "index.html"), []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}

	app := New(Config{
		Static:  StaticConfig{Dir: publicDir},
		DevMode: true,
	})

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/index.html", nil))

	body := rr.Body.String()
	if !strings.Contains(body, "WebSocket") {
		t.Error("dev mode should inject the reload client into HTML pages")
	}
	if !strings.Contains(body, "</body>") || strings.Index(body, "WebSocket") > strings.Index(body, "</body>") {
		t.Error("reload client should be injected before the closing body tag")
	}
}

func TestScopeHelpersOutsideRequest(t *testing.T) {
	if err := Redirect(context.Background(), "/x", 0); err != ErrNoScope {
		t.Errorf("Redirect outside scope = %v, want ErrNoScope", err)
	}
	if err := RevalidatePath(context.Background(), "/x"); err != ErrNoScope {
		t.Errorf("RevalidatePath outside scope = %v, want ErrNoScope", err)
	}
}

func TestAppFacadeAliasesUsable(t *testing.T) {
	var h Handler = func(c *Context) (*Response, error) {
		return NewResponse(strings.NewReader("raw"), WithStatus(http.StatusTeapot)), nil
	}
	app := New(DefaultConfig())
	app.Method(http.MethodGet, "/teapot", h)
	app.SetErrorHandler(func(c *router.Context, err error) *router.Response {
		return Text("oops", WithStatus(http.StatusBadGateway))
	})

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/teapot", nil))
	if rr.Code != http.StatusTeapot || rr.Body.String() != "raw" {
		t.Errorf("status = %d body = %q", rr.Code, rr.Body.String())
	}
}
