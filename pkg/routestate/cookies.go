package routestate

import (
	"net/http"
	"time"
)

// Cookie returns the named cookie from the incoming request.
func (s *Storage) Cookie(name string) (*http.Cookie, error) {
	if s.req == nil {
		return nil, http.ErrNoCookie
	}
	return s.req.Cookie(name)
}

// Cookies returns all cookies from the incoming request.
func (s *Storage) Cookies() []*http.Cookie {
	if s.req == nil {
		return nil
	}
	return s.req.Cookies()
}

// SetCookie appends a Set-Cookie header to the shared response header
// collection.
func (s *Storage) SetCookie(cookie *http.Cookie) {
	if cookie == nil {
		return
	}
	if v := cookie.String(); v != "" {
		s.respHeader.Add("Set-Cookie", v)
	}
}

// DeleteCookie instructs the client to remove the named cookie. Deletion is
// a Set-Cookie with an expiry in the past.
func (s *Storage) DeleteCookie(name string) {
	s.SetCookie(&http.Cookie{
		Name:    name,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
}
