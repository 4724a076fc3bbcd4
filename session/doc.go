// Package session implements the cookie/session collaborator for the
// dispatch core: a per-request cookie jar and an in-memory session
// store keyed by a generated session-id cookie.
//
// The Source type satisfies dispatch.StateSource, so it plugs directly
// into a Dispatcher:
//
//	store := session.NewStore()
//	d, _ := dispatch.NewDispatcher(dispatch.DispatcherConfig{
//	    Table: table,
//	    State: store,
//	})
//
// Session ids are UUID v4 strings delivered in an HttpOnly cookie. The
// store is safe for concurrent use across requests.
package session
