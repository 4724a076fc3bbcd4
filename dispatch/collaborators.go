package dispatch

import "net/http"

// CookieAccessor is the mapping accessor the cookie collaborator
// returns for one request. Set and Remove mutate the response;
// Clear expires every cookie present on the request.
type CookieAccessor interface {
	Get(name string) string
	Set(name, value string)
	Remove(name string)
	Clear()
}

// SessionAccessor is the mapping accessor the session collaborator
// returns for one request. The backing store and key space are owned
// by the collaborator.
type SessionAccessor interface {
	Get(name string) string
	Set(name, value string)
	Remove(name string)
	Clear()
}

// StateSource produces the cookie and session accessors for one
// request. The dispatcher queries it lazily, only once a ROUTE or FILE
// classification is reached.
type StateSource interface {
	Cookies(w http.ResponseWriter, r *http.Request) CookieAccessor
	Session(w http.ResponseWriter, r *http.Request) SessionAccessor
}

// AssetStore is the static-asset collaborator. Exists is consulted
// before classifying FILE; ServeFile is called only from the default
// FILE behavior and reports an error when the file disappeared between
// the existence check and streaming.
type AssetStore interface {
	Exists(path string) bool
	ServeFile(w http.ResponseWriter, path string) error
}

// IndexFunc owns the INDEX entry condition. The core never derives an
// INDEX classification itself; it asks this callback after routing
// fails and before the static-asset check.
type IndexFunc func(r *http.Request) bool
