package dispatch

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// DispatcherConfig configures the Dispatcher behaviour.
type DispatcherConfig struct {
	// Table is the populated route table. Required.
	Table *Table

	// Assets is the static-asset collaborator consulted when no route
	// matches. When nil, unmatched requests skip the FILE
	// classification.
	Assets AssetStore

	// State is the cookie/session collaborator, queried lazily once a
	// ROUTE or FILE classification is reached. Optional.
	State StateSource

	// Index owns the INDEX entry condition. When nil, INDEX is
	// unreachable.
	Index IndexFunc

	// IndexPath is the fixed resource the default INDEX behavior
	// redirects to. Defaults to "/index.html" when empty.
	IndexPath string

	// UploadDir is the directory multipart file parts are persisted to.
	UploadDir string

	// Logger receives one record per dispatched request, keyed by the
	// correlation id. Defaults to slog.Default when nil.
	Logger *slog.Logger
}

// Dispatcher orchestrates the router and body decoder per inbound
// request, classifies the outcome, constructs the request context, and
// invokes the matched handler or an overridable default behavior. It
// implements http.Handler.
type Dispatcher struct {
	table     *Table
	decoder   *Decoder
	assets    AssetStore
	state     StateSource
	index     IndexFunc
	logger    *slog.Logger
	onError   Hook
	onFile    Hook
	onIndex   Hook
	indexPath string
	seq       Sequence
}

// NewDispatcher creates a Dispatcher from the given configuration.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Table == nil {
		return nil, ErrNilTable
	}

	indexPath := cfg.IndexPath
	if indexPath == "" {
		indexPath = "/index.html"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		table:     cfg.Table,
		decoder:   NewDecoder(cfg.UploadDir),
		assets:    cfg.Assets,
		state:     cfg.State,
		index:     cfg.Index,
		indexPath: indexPath,
		logger:    logger,
	}, nil
}

// OnError replaces the ERROR hook. The last registration wins.
func (d *Dispatcher) OnError(h Hook) { d.onError = h }

// OnFile replaces the FILE hook. The last registration wins.
func (d *Dispatcher) OnFile(h Hook) { d.onFile = h }

// OnIndex replaces the INDEX hook. The last registration wins.
func (d *Dispatcher) OnIndex(h Hook) { d.onIndex = h }

// ServeHTTP classifies the request and dispatches it. Every error path
// still produces a well-formed response; no connection is left hanging.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The correlation id is assigned before any other work so log
	// records across the processing chain group in acceptance order.
	id := d.seq.Next()

	// Matching uses the percent-encoded path (RFC 3986 Section 2.1):
	// captures bind the request segment verbatim, with no implicit
	// decoding and no normalization.
	path := r.URL.EscapedPath()

	c := &Context{
		w:       w,
		r:       r,
		id:      id,
		path:    path,
		method:  r.Method,
		query:   queryMap(r.URL.RawQuery),
		payload: Payload{},
	}

	raw, streamErr := d.accumulate(r)

	switch {
	case streamErr != nil:
		// Body-stream errors short-circuit directly to ERROR,
		// bypassing the normal decode path.
		c.class = ClassError
		c.status = http.StatusBadRequest
		c.err = streamErr
	default:
		if m, ok := d.table.Match(r.Method, path); ok {
			c.class = ClassRoute
			c.route = m.Route
			c.captures = m.Captures
			c.payload = d.decoder.Decode(r.Method, r.Header.Get("Content-Type"), raw)
		} else if d.index != nil && d.index(r) {
			c.class = ClassIndex
			c.status = http.StatusFound
		} else if d.assets != nil && d.assets.Exists(path) {
			c.class = ClassFile
			c.status = http.StatusOK
		} else {
			c.class = ClassError
			c.status = http.StatusNotFound
			c.err = ErrNotFound
		}
	}

	if d.state != nil && (c.class == ClassRoute || c.class == ClassFile) {
		c.cookies = d.state.Cookies(w, r)
		c.session = d.state.Session(w, r)
	}

	d.dispatch(c)

	d.logger.Info("request dispatched",
		slog.Uint64("id", c.id),
		slog.String("method", c.method),
		slog.String("path", c.path),
		slog.String("class", c.class.String()),
		slog.Int("status", c.status),
	)
}

// accumulate reads the full body for methods that may carry one. For
// GET-like methods the stream is not consumed at all.
func (d *Dispatcher) accumulate(r *http.Request) ([]byte, error) {
	if !methodHasBody(r.Method) || r.Body == nil {
		return nil, nil
	}
	return io.ReadAll(r.Body)
}

// dispatch is the single downstream consumer of classified requests.
// Per classification it invokes the overridable hook first and runs
// default behavior only when the hook reports the request unhandled.
func (d *Dispatcher) dispatch(c *Context) {
	switch c.class {
	case ClassRoute:
		d.invoke(c)

	case ClassFile:
		if d.onFile != nil && d.onFile(c) {
			return
		}
		if err := d.assets.ServeFile(c.w, c.path); err != nil {
			// The file disappeared between the existence check and
			// streaming.
			c.status = http.StatusNotFound
			http.Error(c.w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		}

	case ClassIndex:
		if d.onIndex != nil && d.onIndex(c) {
			return
		}
		c.Redirect(d.indexPath)

	case ClassError:
		if d.onError != nil && d.onError(c) {
			return
		}
		message := http.StatusText(c.status)
		if c.err != nil {
			message = c.err.Error()
		}
		c.Text(c.status, message)
	}
}

// invoke runs the matched handler. A returned error or a panic is
// caught at the dispatch boundary and converted to a 500 response
// carrying the fault's message; no fault propagates out.
func (d *Dispatcher) invoke(c *Context) {
	defer func() {
		if rec := recover(); rec != nil {
			d.fault(c, fmt.Sprintf("%v", rec))
		}
	}()

	if err := c.route.handler(c); err != nil {
		d.fault(c, err.Error())
	}
}

// fault writes the 500 response for a handler fault.
func (d *Dispatcher) fault(c *Context, message string) {
	d.logger.Error("handler fault",
		slog.Uint64("id", c.id),
		slog.String("path", c.path),
		slog.String("error", message),
	)
	c.Text(http.StatusInternalServerError, message)
}
