package dispatch

import "strings"

// Match stores the result of a successful table lookup.
type Match struct {
	// Route is the matched route.
	Route *Route

	// Captures contains the named path segments bound during matching.
	// Values are taken from the request path verbatim; percent-encoded
	// text is not decoded (RFC 3986 Section 2.1).
	Captures map[string]string
}

// Match attempts to match the given method and path against the table.
// The first route in registration order that matches wins; there is no
// specificity ranking, so more specific patterns must be registered
// before more general ones. Complexity is O(routes × segments), which
// is acceptable for small, static tables.
func (t *Table) Match(method, path string) (*Match, bool) {
	segments := strings.Split(path, "/")

	for _, route := range t.routes {
		if route.err != nil {
			continue
		}
		if route.method != "" && route.method != method {
			continue
		}
		captures, ok := matchSegments(route.segments, segments)
		if !ok {
			continue
		}
		return &Match{Route: route, Captures: captures}, true
	}

	return nil, false
}

// matchSegments compares a pattern against a request path segment by
// segment. Segment counts must be equal; there is no wildcard-length or
// prefix matching, and no trailing-slash normalization. A pattern
// segment of the form ":name" (name non-empty) always matches and binds
// the request segment; any other pattern segment must match literally.
func matchSegments(pattern, path []string) (map[string]string, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}

	var captures map[string]string
	for i, seg := range pattern {
		if isCapture(seg) {
			if captures == nil {
				captures = make(map[string]string)
			}
			captures[seg[1:]] = path[i]
			continue
		}
		if seg != path[i] {
			return nil, false
		}
	}

	return captures, true
}

// isCapture reports whether the pattern segment is a named capture:
// it begins with ':' and is longer than one character. A bare ":" is a
// literal segment.
func isCapture(seg string) bool {
	return len(seg) > 1 && seg[0] == ':'
}
