package dispatch

import (
	"net/http"
	"net/url"
)

// Classification is the outcome category assigned to a request before
// dispatch. It is assigned exactly once and never changed after the
// context is handed to a handler.
type Classification int

const (
	// ClassRoute means a registered route matched the request.
	ClassRoute Classification = iota

	// ClassFile means no route matched but a static asset exists at the
	// resolved public path.
	ClassFile

	// ClassIndex means the application-supplied IndexFunc claimed the
	// request. The entry condition is owned by the surrounding
	// application, never derived by the core.
	ClassIndex

	// ClassError means no route matched and no static asset exists, or
	// the body stream failed during accumulation.
	ClassError
)

// String returns the classification name for logging.
func (c Classification) String() string {
	switch c {
	case ClassRoute:
		return "ROUTE"
	case ClassFile:
		return "FILE"
	case ClassIndex:
		return "INDEX"
	case ClassError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Context carries one inbound request through classification and
// dispatch. It is ephemeral: one instance per request, destroyed once
// the response is finalized.
type Context struct {
	w        http.ResponseWriter
	r        *http.Request
	route    *Route
	query    map[string]string
	captures map[string]string
	payload  Payload
	cookies  CookieAccessor
	session  SessionAccessor
	err      error
	path     string
	method   string
	id       uint64
	status   int
	class    Classification
}

// ID returns the correlation id assigned when the request arrived. It
// is a process-wide sequential counter used only for log grouping.
func (c *Context) ID() uint64 { return c.id }

// Path returns the request path the router matched against.
func (c *Context) Path() string { return c.path }

// Method returns the request method token (RFC 9110 Section 9).
func (c *Context) Method() string { return c.method }

// Classification returns the outcome category assigned to the request.
func (c *Context) Classification() Classification { return c.class }

// Err returns the error attached to an ERROR classification, if any.
func (c *Context) Err() error { return c.err }

// Status returns the response status recorded on the context.
func (c *Context) Status() int { return c.status }

// SetStatus records the response status without writing it.
func (c *Context) SetStatus(code int) { c.status = code }

// Query returns the query-string value for the given key. When a key
// appears more than once, the last occurrence wins.
func (c *Context) Query(key string) string { return c.query[key] }

// QueryAll returns the full query-string mapping.
func (c *Context) QueryAll() map[string]string { return c.query }

// Capture returns the named path capture bound during matching. Only
// populated on ROUTE classifications.
func (c *Context) Capture(name string) string { return c.captures[name] }

// Captures returns the full path-capture mapping.
func (c *Context) Captures() map[string]string { return c.captures }

// Payload returns the decoded request body. For methods that may not
// carry a body it is always an empty mapping.
func (c *Context) Payload() Payload { return c.payload }

// Field returns a single decoded body field.
func (c *Context) Field(name string) any { return c.payload[name] }

// Files returns the upload results attached by multipart decoding, in
// the exact order the parts were received.
func (c *Context) Files() []UploadResult { return c.payload.Files() }

// Cookies returns the cookie accessor attached by the state source.
// It is nil for ERROR classifications: collaborators are queried lazily
// only once a ROUTE or FILE classification is reached.
func (c *Context) Cookies() CookieAccessor { return c.cookies }

// Session returns the session accessor attached by the state source,
// under the same lifecycle as Cookies.
func (c *Context) Session() SessionAccessor { return c.session }

// Route returns the matched route on ROUTE classifications, nil
// otherwise.
func (c *Context) Route() *Route { return c.route }

// Request returns the underlying request.
func (c *Context) Request() *http.Request { return c.r }

// Writer returns the underlying response writer.
func (c *Context) Writer() http.ResponseWriter { return c.w }

// Header returns the response header map.
func (c *Context) Header() http.Header { return c.w.Header() }

// queryMap parses a raw query string into a string→string mapping with
// last-duplicate-wins semantics. Malformed query strings yield the
// pairs that did parse.
func queryMap(rawQuery string) map[string]string {
	values, _ := url.ParseQuery(rawQuery)
	m := make(map[string]string, len(values))
	for key, list := range values {
		if len(list) > 0 {
			m[key] = list[len(list)-1]
		}
	}
	return m
}
