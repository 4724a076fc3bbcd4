package session

import "net/http"

// Jar is the per-request cookie accessor. Reads come from the request
// headers; writes go to the response. A value set during the request is
// visible to later Get calls on the same jar.
type Jar struct {
	w       http.ResponseWriter
	r       *http.Request
	pending map[string]string
	removed map[string]struct{}
}

// NewJar returns a cookie jar bound to one request/response pair.
func NewJar(w http.ResponseWriter, r *http.Request) *Jar {
	return &Jar{
		w:       w,
		r:       r,
		pending: make(map[string]string),
		removed: make(map[string]struct{}),
	}
}

// Get returns the cookie value for name, or an empty string when the
// cookie is absent or was removed during this request.
func (j *Jar) Get(name string) string {
	if _, gone := j.removed[name]; gone {
		return ""
	}
	if v, ok := j.pending[name]; ok {
		return v
	}
	c, err := j.r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// Set writes a cookie on the response. Defaults follow common practice
// for session-adjacent cookies: HttpOnly, SameSite=Lax, path "/".
func (j *Jar) Set(name, value string) {
	delete(j.removed, name)
	j.pending[name] = value
	http.SetCookie(j.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Remove expires the named cookie on the response.
func (j *Jar) Remove(name string) {
	delete(j.pending, name)
	j.removed[name] = struct{}{}
	http.SetCookie(j.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires every cookie present on the request plus any set during
// this request.
func (j *Jar) Clear() {
	for _, c := range j.r.Cookies() {
		j.Remove(c.Name)
	}
	for name := range j.pending {
		j.Remove(name)
	}
}
