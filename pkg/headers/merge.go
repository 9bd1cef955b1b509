// Package headers provides order-sensitive merging of HTTP header sets
// with cookie-aware semantics.
//
// Merge is used when forwarding a request server-side on behalf of a
// client: the caller's request headers and the pending response headers
// must collapse into a single coherent header set, with later sources
// overriding earlier ones per cookie name.
package headers

import (
	"net/http"
	"strings"
)

// Merge combines the given header sets into one.
//
// For each source, in order:
//   - Cookie headers are parsed into a working name→value map.
//   - Set-Cookie headers are folded into the same map; a Set-Cookie with an
//     empty value is a deletion marker and removes the name.
//   - Every other header is copied with append semantics (multiple values
//     preserved).
//
// Surviving cookie entries are serialized into a single Cookie header on the
// result, omitted entirely when the map is empty. Nil sources are skipped.
func Merge(sources ...http.Header) http.Header {
	merged := make(http.Header)

	// insertion order of cookie names, so serialization is stable
	var order []string
	cookies := make(map[string]string)

	setCookie := func(name, value string) {
		if _, seen := cookies[name]; !seen {
			order = append(order, name)
		}
		cookies[name] = value
	}
	deleteCookie := func(name string) {
		delete(cookies, name)
	}

	for _, src := range sources {
		if src == nil {
			continue
		}

		// Request-style cookies first, then Set-Cookie overrides, so that a
		// source carrying both applies them in a deterministic order.
		for _, v := range src.Values("Cookie") {
			for _, pair := range parseCookieHeader(v) {
				setCookie(pair.name, pair.value)
			}
		}
		for _, v := range src.Values("Set-Cookie") {
			name, value, ok := parseSetCookie(v)
			if !ok {
				continue
			}
			if value == "" {
				deleteCookie(name)
			} else {
				setCookie(name, value)
			}
		}

		for key, values := range src {
			if strings.EqualFold(key, "Cookie") || strings.EqualFold(key, "Set-Cookie") {
				continue
			}
			for _, v := range values {
				merged.Add(key, v)
			}
		}
	}

	var pairs []string
	for _, name := range order {
		value, ok := cookies[name]
		if !ok {
			continue
		}
		pairs = append(pairs, name+"="+value)
	}
	if len(pairs) > 0 {
		merged.Set("Cookie", strings.Join(pairs, "; "))
	}

	return merged
}

type cookiePair struct {
	name  string
	value string
}

// parseCookieHeader parses a request-style Cookie header value
// ("a=1; b=2") into ordered name/value pairs. Malformed pairs are dropped.
func parseCookieHeader(header string) []cookiePair {
	var out []cookiePair
	for _, pair := range strings.Split(header, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, cookiePair{name: name, value: strings.TrimSpace(value)})
	}
	return out
}

// parseSetCookie extracts the name and value from a response-style
// Set-Cookie header value, ignoring attributes (Path, Expires, ...).
func parseSetCookie(header string) (name, value string, ok bool) {
	first := header
	if idx := strings.IndexByte(header, ';'); idx != -1 {
		first = header[:idx]
	}
	name, value, ok = strings.Cut(first, "=")
	if !ok {
		return "", "", false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(value), true
}
