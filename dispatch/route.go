package dispatch

import (
	"net/http"
	"strings"
)

// HandlerFunc is the application callback invoked for a matched route.
// A returned error is caught at the dispatch boundary and converted to
// a 500 response carrying the error message.
type HandlerFunc func(*Context) error

// Hook is an overridable default behavior for a non-ROUTE
// classification. Returning true marks the request as handled and
// suppresses the default behavior.
type Hook func(*Context) bool

// Route stores one registration in the table. Routes are immutable once
// registered: created at application start-up and never mutated or
// removed afterwards.
type Route struct {
	pattern  string
	segments []string
	method   string // empty matches any method
	handler  HandlerFunc
	doc      string
	err      error
}

// Pattern returns the registered path template.
func (r *Route) Pattern() string { return r.pattern }

// Method returns the method constraint, or an empty string when the
// route matches any method.
func (r *Route) Method() string { return r.method }

// Doc returns the documentation metadata attached at registration, if
// any.
func (r *Route) Doc() string { return r.doc }

// GetError returns any error that was set during registration.
func (r *Route) GetError() error { return r.err }

// Table is an ordered, append-only list of route registrations. It must
// be fully populated before the server begins accepting connections;
// registration is not safe concurrently with matching.
type Table struct {
	routes        []*Route
	preflighted   map[string]struct{}
	corsPreflight bool
}

// NewTable returns an empty route table.
func NewTable() *Table {
	return &Table{
		preflighted: make(map[string]struct{}),
	}
}

// EnableCORSPreflight makes Post, Put, and Delete additionally register
// an OPTIONS route at the same pattern bound to the fixed preflight
// responder. One OPTIONS route is registered per pattern at most.
func (t *Table) EnableCORSPreflight() *Table {
	t.corsPreflight = true
	return t
}

// Register appends a route for the given method and pattern. An empty
// method matches every method, including ones that may carry a body.
func (t *Table) Register(method, pattern string, handler HandlerFunc, doc ...string) *Route {
	route := &Route{
		pattern:  pattern,
		segments: strings.Split(pattern, "/"),
		method:   strings.ToUpper(method),
		handler:  handler,
	}
	if handler == nil {
		route.err = ErrNilHandler
	}
	if len(doc) > 0 {
		route.doc = doc[0]
	}
	t.routes = append(t.routes, route)
	return route
}

// Get registers a route matched for GET requests only.
func (t *Table) Get(pattern string, handler HandlerFunc, doc ...string) *Route {
	return t.Register(http.MethodGet, pattern, handler, doc...)
}

// Post registers a route matched for POST requests only.
func (t *Table) Post(pattern string, handler HandlerFunc, doc ...string) *Route {
	t.registerPreflight(pattern)
	return t.Register(http.MethodPost, pattern, handler, doc...)
}

// Put registers a route matched for PUT requests only.
func (t *Table) Put(pattern string, handler HandlerFunc, doc ...string) *Route {
	t.registerPreflight(pattern)
	return t.Register(http.MethodPut, pattern, handler, doc...)
}

// Delete registers a route matched for DELETE requests only.
func (t *Table) Delete(pattern string, handler HandlerFunc, doc ...string) *Route {
	t.registerPreflight(pattern)
	return t.Register(http.MethodDelete, pattern, handler, doc...)
}

// Option registers a route matched for OPTIONS requests only.
func (t *Table) Option(pattern string, handler HandlerFunc, doc ...string) *Route {
	return t.Register(http.MethodOptions, pattern, handler, doc...)
}

// Any registers a route matched for every method.
func (t *Table) Any(pattern string, handler HandlerFunc, doc ...string) *Route {
	return t.Register("", pattern, handler, doc...)
}

// registerPreflight registers the fixed CORS preflight responder for
// the pattern when the CORS flag is enabled. Registration order still
// applies: the OPTIONS route lands directly before its mutating route.
func (t *Table) registerPreflight(pattern string) {
	if !t.corsPreflight {
		return
	}
	if _, ok := t.preflighted[pattern]; ok {
		return
	}
	t.preflighted[pattern] = struct{}{}
	t.Register(http.MethodOptions, pattern, Preflight)
}

// Len returns the number of registered routes.
func (t *Table) Len() int { return len(t.routes) }

// WalkFunc is the type of the function called for each route visited by
// Walk, in registration order.
type WalkFunc func(route *Route) error

// Walk visits every registered route in registration order. Used by
// documentation-page generators to enumerate the table.
func (t *Table) Walk(walkFn WalkFunc) error {
	for _, route := range t.routes {
		if err := walkFn(route); err != nil {
			return err
		}
	}
	return nil
}

// Preflight is the fixed CORS preflight responder bound to
// auto-registered OPTIONS routes. It advertises a permissive policy
// per the Fetch Standard (https://fetch.spec.whatwg.org/#http-cors-protocol)
// and terminates the request with 204 No Content.
func Preflight(c *Context) error {
	h := c.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	c.NoContent(http.StatusNoContent)
	return nil
}
