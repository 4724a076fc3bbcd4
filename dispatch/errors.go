package dispatch

import "errors"

// ErrNotFound is attached to ERROR classifications when no route matches
// and no static asset exists. Triggers 404 Not Found per RFC 9110
// Section 15.5.5.
var ErrNotFound = errors.New("not found")

// ErrNilTable is returned by NewDispatcher when no route table is given.
var ErrNilTable = errors.New("dispatch: route table must not be nil")

// ErrNilHandler is returned as a route registration error when the
// handler is nil.
var ErrNilHandler = errors.New("dispatch: handler must not be nil")
