package headers

import "net/http"

// MergeSetCookies combines the Set-Cookie entries of the given header
// sets, later sources overriding earlier ones per cookie name. Unlike
// Merge, entries keep their full attribute strings and empty-value
// entries survive: on the response side an empty Set-Cookie is the
// deletion instruction the client must see.
func MergeSetCookies(sources ...http.Header) []string {
	var order []string
	byName := make(map[string]string)

	for _, src := range sources {
		if src == nil {
			continue
		}
		for _, v := range src.Values("Set-Cookie") {
			name, _, ok := parseSetCookie(v)
			if !ok {
				continue
			}
			if _, seen := byName[name]; !seen {
				order = append(order, name)
			}
			byName[name] = v
		}
	}

	out := make([]string, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out
}
