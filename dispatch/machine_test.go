package dispatch

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quietLogger keeps dispatcher logs out of test output.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDispatcher(t *testing.T, cfg DispatcherConfig) *Dispatcher {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = quietLogger()
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = t.TempDir()
	}
	d, err := NewDispatcher(cfg)
	require.NoError(t, err)
	return d
}

// stubAssets is a static-asset collaborator test double.
type stubAssets struct {
	exists   bool
	body     string
	serveErr error
}

func (s *stubAssets) Exists(string) bool { return s.exists }

func (s *stubAssets) ServeFile(w http.ResponseWriter, _ string) error {
	if s.serveErr != nil {
		return s.serveErr
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Write([]byte(s.body))
	return nil
}

// stubState is a cookie/session collaborator test double recording
// whether it was queried.
type stubState struct {
	queried bool
}

type stubAccessor map[string]string

func (a stubAccessor) Get(name string) string { return a[name] }
func (a stubAccessor) Set(name, value string) { a[name] = value }
func (a stubAccessor) Remove(name string)     { delete(a, name) }
func (a stubAccessor) Clear()                 { clear(a) }

func (s *stubState) Cookies(http.ResponseWriter, *http.Request) CookieAccessor {
	s.queried = true
	return stubAccessor{}
}

func (s *stubState) Session(http.ResponseWriter, *http.Request) SessionAccessor {
	s.queried = true
	return stubAccessor{}
}

// errReader fails on the first read, simulating a broken body stream.
type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestNewDispatcher(t *testing.T) {
	t.Run("requires a table", func(t *testing.T) {
		_, err := NewDispatcher(DispatcherConfig{})
		require.ErrorIs(t, err, ErrNilTable)
	})
}

func TestDispatcherRoute(t *testing.T) {
	t.Run("invokes matched handler with context", func(t *testing.T) {
		table := NewTable()
		table.Get("/users/:id", func(c *Context) error {
			assert.Equal(t, ClassRoute, c.Classification())
			assert.Equal(t, "42", c.Capture("id"))
			assert.Equal(t, http.MethodGet, c.Method())
			c.Text(http.StatusOK, "user "+c.Capture("id"))
			return nil
		})
		d := newTestDispatcher(t, DispatcherConfig{Table: table})

		w := httptest.NewRecorder()
		d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/42", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user 42", w.Body.String())
	})

	t.Run("query duplicates resolve to the last value", func(t *testing.T) {
		table := NewTable()
		table.Get("/q", func(c *Context) error {
			c.Text(http.StatusOK, c.Query("x"))
			return nil
		})
		d := newTestDispatcher(t, DispatcherConfig{Table: table})

		w := httptest.NewRecorder()
		d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/q?x=1&x=2", nil))
		assert.Equal(t, "2", w.Body.String())
	})

	t.Run("decodes POST body for the handler", func(t *testing.T) {
		table := NewTable()
		table.Post("/items", func(c *Context) error {
			c.Text(http.StatusCreated, c.Field("name").(string))
			return nil
		})
		d := newTestDispatcher(t, DispatcherConfig{Table: table})

		req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"name":"widget"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		d.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "widget", w.Body.String())
	})

	t.Run("GET payload stays empty regardless of stream content", func(t *testing.T) {
		table := NewTable()
		table.Get("/g", func(c *Context) error {
			assert.Empty(t, c.Payload())
			c.NoContent(http.StatusNoContent)
			return nil
		})
		d := newTestDispatcher(t, DispatcherConfig{Table: table})

		req := httptest.NewRequest(http.MethodGet, "/g", strings.NewReader(`{"ignored":true}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		d.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("handler error becomes a 500 with the message", func(t *testing.T) {
		table := NewTable()
		table.Get("/boom", func(_ *Context) error {
			return errors.New("boom happened")
		})
		d := newTestDispatcher(t, DispatcherConfig{Table: table})

		w := httptest.NewRecorder()
		d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "boom happened", w.Body.String())
	})

	t.Run("handler panic is caught at the dispatch boundary", func(t *testing.T) {
		table := NewTable()
		table.Get("/panic", func(_ *Context) error {
			panic("kaboom")
		})
		d := newTestDispatcher(t, DispatcherConfig{Table: table})

		w := httptest.NewRecorder()
		require.NotPanics(t, func() {
			d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "kaboom")
	})

	t.Run("state source is queried lazily on ROUTE", func(t *testing.T) {
		state := &stubState{}
		table := NewTable()
		table.Get("/s", func(c *Context) error {
			require.NotNil(t, c.Cookies())
			require.NotNil(t, c.Session())
			c.NoContent(http.StatusNoContent)
			return nil
		})
		d := newTestDispatcher(t, DispatcherConfig{Table: table, State: state})

		d.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/s", nil))
		assert.True(t, state.queried)
	})

	t.Run("state source is not queried on ERROR", func(t *testing.T) {
		state := &stubState{}
		d := newTestDispatcher(t, DispatcherConfig{Table: NewTable(), State: state})

		d.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
		assert.False(t, state.queried)
	})
}

func TestDispatcherClassification(t *testing.T) {
	t.Run("no route and no file yields 404", func(t *testing.T) {
		d := newTestDispatcher(t, DispatcherConfig{
			Table:  NewTable(),
			Assets: &stubAssets{exists: false},
		})

		w := httptest.NewRecorder()
		d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not found", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("existing static asset classifies FILE", func(t *testing.T) {
		d := newTestDispatcher(t, DispatcherConfig{
			Table:  NewTable(),
			Assets: &stubAssets{exists: true, body: "body{color:red}"},
		})

		w := httptest.NewRecorder()
		d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/site.css", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "body{color:red}", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "text/css")
	})

	t.Run("file missing at stream time yields 404", func(t *testing.T) {
		d := newTestDispatcher(t, DispatcherConfig{
			Table:  NewTable(),
			Assets: &stubAssets{exists: true, serveErr: errors.New("gone")},
		})

		w := httptest.NewRecorder()
		d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/gone.css", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("index func owns the INDEX classification", func(t *testing.T) {
		d := newTestDispatcher(t, DispatcherConfig{
			Table:     NewTable(),
			Index:     func(*http.Request) bool { return true },
			IndexPath: "/welcome.html",
		})

		w := httptest.NewRecorder()
		d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anything", nil))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/welcome.html", w.Header().Get("Location"))
	})

	t.Run("matched route wins over index and file", func(t *testing.T) {
		table := NewTable()
		table.Get("/page", func(c *Context) error {
			c.Text(http.StatusOK, "routed")
			return nil
		})
		d := newTestDispatcher(t, DispatcherConfig{
			Table:  table,
			Index:  func(*http.Request) bool { return true },
			Assets: &stubAssets{exists: true, body: "static"},
		})

		w := httptest.NewRecorder()
		d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/page", nil))
		assert.Equal(t, "routed", w.Body.String())
	})

	t.Run("body stream error short-circuits to ERROR", func(t *testing.T) {
		table := NewTable()
		invoked := false
		table.Post("/p", func(_ *Context) error {
			invoked = true
			return nil
		})
		d := newTestDispatcher(t, DispatcherConfig{Table: table})

		req := httptest.NewRequest(http.MethodPost, "/p", errReader{err: errors.New("stream torn")})
		w := httptest.NewRecorder()
		d.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "stream torn", w.Body.String())
		assert.False(t, invoked)
	})
}

func TestDispatcherHooks(t *testing.T) {
	t.Run("error hook suppresses the default behavior", func(t *testing.T) {
		d := newTestDispatcher(t, DispatcherConfig{Table: NewTable()})
		d.OnError(func(c *Context) bool {
			c.JSON(c.Status(), map[string]string{"error": c.Err().Error()})
			return true
		})

		w := httptest.NewRecorder()
		d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
	})

	t.Run("falsy hook result falls through to the default", func(t *testing.T) {
		d := newTestDispatcher(t, DispatcherConfig{Table: NewTable()})
		d.OnError(func(_ *Context) bool { return false })

		w := httptest.NewRecorder()
		d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not found", w.Body.String())
	})

	t.Run("last hook registration wins", func(t *testing.T) {
		d := newTestDispatcher(t, DispatcherConfig{Table: NewTable()})
		d.OnError(func(c *Context) bool {
			c.Text(c.Status(), "first")
			return true
		})
		d.OnError(func(c *Context) bool {
			c.Text(c.Status(), "second")
			return true
		})

		w := httptest.NewRecorder()
		d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
		assert.Equal(t, "second", w.Body.String())
	})

	t.Run("file hook overrides streaming", func(t *testing.T) {
		d := newTestDispatcher(t, DispatcherConfig{
			Table:  NewTable(),
			Assets: &stubAssets{exists: true, body: "never sent"},
		})
		d.OnFile(func(c *Context) bool {
			c.Text(http.StatusForbidden, "no files for you")
			return true
		})

		w := httptest.NewRecorder()
		d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x.css", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "no files for you", w.Body.String())
	})

	t.Run("index hook overrides the redirect", func(t *testing.T) {
		d := newTestDispatcher(t, DispatcherConfig{
			Table: NewTable(),
			Index: func(*http.Request) bool { return true },
		})
		d.OnIndex(func(c *Context) bool {
			c.Text(http.StatusOK, "inline index")
			return true
		})

		w := httptest.NewRecorder()
		d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "inline index", w.Body.String())
	})
}

func TestDispatcherCorrelation(t *testing.T) {
	t.Run("ids increase across requests", func(t *testing.T) {
		table := NewTable()
		var ids []uint64
		table.Get("/id", func(c *Context) error {
			ids = append(ids, c.ID())
			c.NoContent(http.StatusNoContent)
			return nil
		})
		d := newTestDispatcher(t, DispatcherConfig{Table: table})

		for range 3 {
			d.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/id", nil))
		}
		require.Len(t, ids, 3)
		assert.Less(t, ids[0], ids[1])
		assert.Less(t, ids[1], ids[2])
	})
}

func TestDispatcherPreflight(t *testing.T) {
	t.Run("auto-registered OPTIONS route answers preflight", func(t *testing.T) {
		table := NewTable().EnableCORSPreflight()
		table.Post("/items", noopHandler)
		d := newTestDispatcher(t, DispatcherConfig{Table: table})

		w := httptest.NewRecorder()
		d.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/items", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})
}

func TestDispatcherEncodedPath(t *testing.T) {
	t.Run("captures stay percent-encoded end to end", func(t *testing.T) {
		table := NewTable()
		table.Get("/files/:name", func(c *Context) error {
			c.Text(http.StatusOK, c.Capture("name"))
			return nil
		})
		d := newTestDispatcher(t, DispatcherConfig{Table: table})

		w := httptest.NewRecorder()
		d.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/report%202024.txt", nil))
		assert.Equal(t, "report%202024.txt", w.Body.String())
	})
}
