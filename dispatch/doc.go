// Package dispatch implements a minimal HTTP request-dispatch core: it
// matches an incoming request against an ordered route table, decodes the
// request body according to its content type, classifies the request into
// one of four outcomes, and invokes the matched handler or an overridable
// default behavior.
//
// The package implements dispatch semantics based on:
//   - RFC 9110 (HTTP Semantics)
//   - RFC 3986 (URIs)
//   - RFC 7578 (multipart/form-data)
//
// # Route Table
//
// Routes are registered on a Table before the server starts accepting
// connections. Patterns are slash-delimited; a segment starting with a
// colon is a named capture:
//
//	t := dispatch.NewTable()
//	t.Get("/users/:id", userHandler)
//	t.Post("/users", createHandler)
//	t.Any("/ping", pingHandler)
//
// Matching is strictly first-registered-wins with no specificity
// ranking: register more specific patterns before more general ones.
// Segment counts must be equal, so a trailing slash changes matching.
//
// # Dispatcher
//
// The Dispatcher classifies every request as ROUTE, FILE, INDEX, or
// ERROR and implements http.Handler:
//
//	d, err := dispatch.NewDispatcher(dispatch.DispatcherConfig{
//	    Table:  t,
//	    Assets: assets,
//	    State:  sessions,
//	})
//	http.ListenAndServe(":8080", d)
//
// A matched route is classified ROUTE and its handler receives a
// *Context carrying the query values, path captures, decoded body, and
// lazily attached cookie and session accessors. When no route matches,
// the request falls through to FILE (a static asset exists at the
// path), INDEX (the application-supplied IndexFunc claims it), or
// ERROR (404).
//
// # Body Decoding
//
// Bodies are decoded by declared content type:
// application/x-www-form-urlencoded, application/json, and
// multipart/form-data. Malformed JSON decodes to an empty payload
// rather than failing the request. Multipart file parts are persisted
// to the configured upload directory strictly in part order; per-file
// write failures are recorded in the payload's "files" list without
// aborting the remaining parts.
//
// # Default Behaviors and Hooks
//
// Each non-ROUTE classification has a default behavior (serve the
// file, redirect to the index resource, write the error as plain
// text). The OnError, OnFile, and OnIndex hooks replace those defaults
// when they return true; the last registered hook wins:
//
//	d.OnError(func(c *dispatch.Context) bool {
//	    c.JSON(c.Status(), map[string]string{"error": c.Err().Error()})
//	    return true
//	})
//
// A handler that returns an error or panics is caught at the dispatch
// boundary and converted to a 500 response carrying the error message.
package dispatch
