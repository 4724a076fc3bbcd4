package session

import (
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/corewire/weft/dispatch"
)

// Default session configuration.
const (
	defaultCookieName = "__sid"
	defaultMaxAge     = 86400 * 30 // 30 days
)

// Store is the server-owned session store: a mapping from session id
// to session values. It satisfies dispatch.StateSource so the
// dispatcher can attach cookie and session accessors lazily.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]map[string]string
	cookieName string
	maxAge     int
}

// Option configures the Store.
type Option func(*Store)

// WithCookieName sets the session cookie name.
func WithCookieName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.cookieName = name
		}
	}
}

// WithMaxAge sets the session cookie max age in seconds.
func WithMaxAge(seconds int) Option {
	return func(s *Store) {
		if seconds > 0 {
			s.maxAge = seconds
		}
	}
}

// NewStore creates an in-memory session store with the given options.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions:   make(map[string]map[string]string),
		cookieName: defaultCookieName,
		maxAge:     defaultMaxAge,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cookies returns the cookie accessor for one request.
func (s *Store) Cookies(w http.ResponseWriter, r *http.Request) dispatch.CookieAccessor {
	return NewJar(w, r)
}

// Session returns the session accessor for one request. A missing or
// unknown session id cookie starts a fresh session: a new UUID v4 id
// is issued and delivered on the response.
func (s *Store) Session(w http.ResponseWriter, r *http.Request) dispatch.SessionAccessor {
	id := ""
	if c, err := r.Cookie(s.cookieName); err == nil {
		id = c.Value
	}

	s.mu.Lock()
	if _, known := s.sessions[id]; id == "" || !known {
		id = uuid.New().String()
		s.sessions[id] = make(map[string]string)

		http.SetCookie(w, &http.Cookie{
			Name:     s.cookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   s.maxAge,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	s.mu.Unlock()

	return &Session{store: s, id: id}
}

// Purge drops the session with the given id from the store.
func (s *Store) Purge(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Session is the per-request session accessor bound to one session id.
type Session struct {
	store *Store
	id    string
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Get returns the session value for name, or an empty string.
func (s *Session) Get(name string) string {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return s.store.sessions[s.id][name]
}

// Set stores a session value.
func (s *Session) Set(name, value string) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if values, ok := s.store.sessions[s.id]; ok {
		values[name] = value
	}
}

// Remove deletes a session value.
func (s *Session) Remove(name string) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if values, ok := s.store.sessions[s.id]; ok {
		delete(values, name)
	}
}

// Clear deletes every value in the session, keeping the session alive.
func (s *Session) Clear() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, ok := s.store.sessions[s.id]; ok {
		s.store.sessions[s.id] = make(map[string]string)
	}
}
