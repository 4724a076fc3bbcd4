package dispatch

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// Text writes body to the response as text/plain with the given status
// code and records the status on the context.
func (c *Context) Text(code int, body string) {
	c.status = code
	c.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.w.WriteHeader(code)
	c.w.Write([]byte(body))
}

// JSON encodes v and writes it to the response with the given status
// code. The Content-Type header is set to "application/json". If
// encoding fails, an HTTP 500 Internal Server Error is written instead.
func (c *Context) JSON(code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		c.status = http.StatusInternalServerError
		http.Error(c.w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	c.status = code
	c.w.Header().Set("Content-Type", "application/json")
	c.w.WriteHeader(code)
	c.w.Write(buf.Bytes())
}

// NoContent writes the status code with an empty body.
func (c *Context) NoContent(code int) {
	c.status = code
	c.w.WriteHeader(code)
}

// Redirect issues a 302 Found redirect to the given location
// (RFC 9110 Section 15.4.3).
func (c *Context) Redirect(location string) {
	c.status = http.StatusFound
	http.Redirect(c.w, c.r, location, http.StatusFound)
}
