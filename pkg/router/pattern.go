package router

import (
	"fmt"
	"strings"
)

// Pattern is a compiled path pattern. Patterns are hierarchical:
// literal segments, named segments (":id"), and a trailing wildcard
// ("*" or "*rest") capturing the remainder of the path.
type Pattern struct {
	raw      string
	segments []segment

	// wildcard is set when the pattern ends in a catch-all segment.
	hasWildcard  bool
	wildcardName string
}

type segment struct {
	literal string
	param   string // set for ":name" segments
}

// Compile parses a path pattern.
func Compile(pattern string) (*Pattern, error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, fmt.Errorf("router: pattern %q must start with /", pattern)
	}

	p := &Pattern{raw: pattern}
	parts := splitPath(pattern)
	for i, part := range parts {
		switch {
		case strings.HasPrefix(part, "*"):
			if i != len(parts)-1 {
				return nil, fmt.Errorf("router: wildcard must be the last segment in %q", pattern)
			}
			p.hasWildcard = true
			p.wildcardName = part[1:]
			if p.wildcardName == "" {
				p.wildcardName = "*"
			}
		case strings.HasPrefix(part, ":"):
			name := part[1:]
			if name == "" {
				return nil, fmt.Errorf("router: empty parameter name in %q", pattern)
			}
			p.segments = append(p.segments, segment{param: name})
		default:
			p.segments = append(p.segments, segment{literal: part})
		}
	}
	return p, nil
}

// MustCompile is Compile panicking on error, for patterns known at
// registration time.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source pattern.
func (p *Pattern) String() string { return p.raw }

// Match reports whether path matches, returning the named captures. The
// wildcard capture may be empty ("/assets/*" matches "/assets/").
func (p *Pattern) Match(path string) (map[string]string, bool) {
	parts := splitPath(path)

	if len(parts) < len(p.segments) {
		return nil, false
	}
	if !p.hasWildcard && len(parts) != len(p.segments) {
		return nil, false
	}

	var params map[string]string
	for i, seg := range p.segments {
		if seg.param != "" {
			if parts[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[seg.param] = parts[i]
			continue
		}
		if seg.literal != parts[i] {
			return nil, false
		}
	}

	if p.hasWildcard {
		if params == nil {
			params = make(map[string]string)
		}
		params[p.wildcardName] = strings.Join(parts[len(p.segments):], "/")
	}
	return params, true
}

// splitPath splits a path into segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
