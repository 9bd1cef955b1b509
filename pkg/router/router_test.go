package router

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func bodyOf(t *testing.T, resp *Response) string {
	t.Helper()
	if resp.Body == nil {
		return ""
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func TestDispatchOrderPreserving(t *testing.T) {
	r := New()
	var order []string

	r.Handle("/x", func(c *Context) (*Response, error) {
		order = append(order, "first")
		return c.Next()
	})
	r.Handle("/x", func(c *Context) (*Response, error) {
		order = append(order, "second")
		return c.Text("done"), nil
	})

	resp := r.Dispatch(httptest.NewRequest("GET", "/x", nil), nil)

	if got := strings.Join(order, ","); got != "first,second" {
		t.Errorf("execution order = %q, want first,second", got)
	}
	if got := bodyOf(t, resp); got != "done" {
		t.Errorf("body = %q, want %q", got, "done")
	}
}

func TestMethodFiltering(t *testing.T) {
	r := New()
	called := false

	r.Method("POST", "/submit", func(c *Context) (*Response, error) {
		called = true
		return c.Text("ok"), nil
	})

	resp := r.Dispatch(httptest.NewRequest("GET", "/submit", nil), nil)

	if called {
		t.Error("POST-only handler ran for a GET request")
	}
	if resp.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.Status)
	}
}

func TestMethodSetAndCaseInsensitive(t *testing.T) {
	r := New()
	r.Methods([]string{"get", "HEAD"}, "/doc", func(c *Context) (*Response, error) {
		return c.Text("doc"), nil
	})

	for _, method := range []string{"GET", "HEAD"} {
		resp := r.Dispatch(httptest.NewRequest(method, "/doc", nil), nil)
		if resp.Status != http.StatusOK {
			t.Errorf("%s status = %d, want 200", method, resp.Status)
		}
	}
	if resp := r.Dispatch(httptest.NewRequest("DELETE", "/doc", nil), nil); resp.Status != http.StatusNotFound {
		t.Errorf("DELETE status = %d, want 404", resp.Status)
	}
}

func TestNamedParams(t *testing.T) {
	r := New()
	r.Handle("/users/:id/posts/:post", func(c *Context) (*Response, error) {
		return c.Text(c.Param("id") + "/" + c.Param("post")), nil
	})

	resp := r.Dispatch(httptest.NewRequest("GET", "/users/42/posts/7", nil), nil)
	if got := bodyOf(t, resp); got != "42/7" {
		t.Errorf("body = %q, want %q", got, "42/7")
	}
}

func TestWildcardTail(t *testing.T) {
	r := New()
	r.Handle("/assets/*path", func(c *Context) (*Response, error) {
		return c.Text(c.Param("path")), nil
	})

	resp := r.Dispatch(httptest.NewRequest("GET", "/assets/css/site.css", nil), nil)
	if got := bodyOf(t, resp); got != "css/site.css" {
		t.Errorf("wildcard capture = %q, want %q", got, "css/site.css")
	}
}

func TestDefaultHandlerBody(t *testing.T) {
	r := New()
	r.SetNotFound(func(c *Context) (*Response, error) {
		return c.Text("nothing here", WithStatus(http.StatusNotFound)), nil
	})

	resp := r.Dispatch(httptest.NewRequest("GET", "/resource", nil), nil)
	if resp.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.Status)
	}
	if got := bodyOf(t, resp); got != "nothing here" {
		t.Errorf("body = %q, want the default handler's exact body", got)
	}
}

func TestMiddlewareRewrapsResponse(t *testing.T) {
	r := New()
	r.Use(func(c *Context) (*Response, error) {
		resp, err := c.Next()
		if err != nil {
			return nil, err
		}
		resp.Header.Set("X-Wrapped", "1")
		return resp, nil
	})
	r.Handle("/page", func(c *Context) (*Response, error) {
		return c.Text("page"), nil
	})

	resp := r.Dispatch(httptest.NewRequest("GET", "/page", nil), nil)
	if resp.Header.Get("X-Wrapped") != "1" {
		t.Error("middleware header rewrap missing")
	}
}

func TestStateSharedAcrossChain(t *testing.T) {
	r := New()
	r.Use(func(c *Context) (*Response, error) {
		c.State["user"] = "ada"
		return c.Next()
	})
	r.Handle("/who", func(c *Context) (*Response, error) {
		user, _ := c.State["user"].(string)
		return c.Text(user), nil
	})

	resp := r.Dispatch(httptest.NewRequest("GET", "/who", nil), nil)
	if got := bodyOf(t, resp); got != "ada" {
		t.Errorf("state value = %q, want %q", got, "ada")
	}
}

func TestInitialStateSeedsChain(t *testing.T) {
	r := New()
	r.Handle("/seeded", func(c *Context) (*Response, error) {
		v, _ := c.State["seed"].(string)
		return c.Text(v), nil
	})

	resp := r.Dispatch(httptest.NewRequest("GET", "/seeded", nil), map[string]any{"seed": "yes"})
	if got := bodyOf(t, resp); got != "yes" {
		t.Errorf("seeded state = %q, want %q", got, "yes")
	}
}

func TestErrorReachesErrorHandler(t *testing.T) {
	r := New()
	var seen error
	r.SetErrorHandler(func(c *Context, err error) *Response {
		seen = err
		return Text("handled", WithStatus(http.StatusInternalServerError))
	})
	boom := errors.New("boom")
	r.Handle("/fail", func(c *Context) (*Response, error) {
		return nil, boom
	})

	resp := r.Dispatch(httptest.NewRequest("GET", "/fail", nil), nil)
	if !errors.Is(seen, boom) {
		t.Errorf("error handler saw %v, want boom", seen)
	}
	if resp.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.Status)
	}
}

func TestPanicIsCaughtOnce(t *testing.T) {
	r := New()
	r.Handle("/panic", func(c *Context) (*Response, error) {
		panic("kaboom")
	})

	resp := r.Dispatch(httptest.NewRequest("GET", "/panic", nil), nil)
	if resp.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.Status)
	}
}

func TestErrorHandlerContextFailsLoudly(t *testing.T) {
	r := New()
	var nextPanicked, paramPanicked bool
	r.SetErrorHandler(func(c *Context, err error) *Response {
		func() {
			defer func() { nextPanicked = recover() != nil }()
			c.Next()
		}()
		func() {
			defer func() { paramPanicked = recover() != nil }()
			c.Param("id")
		}()
		return Text("handled", WithStatus(http.StatusInternalServerError))
	})
	r.Handle("/fail", func(c *Context) (*Response, error) {
		return nil, errors.New("boom")
	})

	r.Dispatch(httptest.NewRequest("GET", "/fail", nil), nil)

	if !nextPanicked {
		t.Error("Next in the error handler should fail loudly")
	}
	if !paramPanicked {
		t.Error("Param in the error handler should fail loudly")
	}
}

func TestErrorHandlerPanicFallsBack(t *testing.T) {
	r := New()
	r.SetErrorHandler(func(c *Context, err error) *Response {
		panic("error handler bug")
	})
	r.Handle("/fail", func(c *Context) (*Response, error) {
		return nil, errors.New("boom")
	})

	resp := r.Dispatch(httptest.NewRequest("GET", "/fail", nil), nil)
	if resp.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want fallback 500", resp.Status)
	}
}

func TestRegisterAfterServingPanics(t *testing.T) {
	r := New()
	r.Handle("/a", func(c *Context) (*Response, error) { return c.Text("a"), nil })
	r.Dispatch(httptest.NewRequest("GET", "/a", nil), nil)

	defer func() {
		if recover() == nil {
			t.Error("expected panic registering after first dispatch")
		}
	}()
	r.Handle("/b", func(c *Context) (*Response, error) { return c.Text("b"), nil })
}

func TestServeHTTP(t *testing.T) {
	r := New()
	r.Handle("/hello", func(c *Context) (*Response, error) {
		return c.JSON(map[string]string{"msg": "hi"}), nil
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/hello", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if !strings.Contains(rec.Body.String(), `"msg":"hi"`) {
		t.Errorf("body = %q, want JSON with msg", rec.Body.String())
	}
}
