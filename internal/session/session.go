// Package session issues opaque session IDs in HttpOnly cookies, backed by
// the cache layer. A session is only established after the resolver has
// committed the account, never earlier.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lexiconhq/tenant-auth/internal/cache"
)

var ErrNoSession = errors.New("session: not authenticated")

// Session is the server-side record behind a session cookie.
type Session struct {
	ID        string    `json:"id"`
	UserKey   string    `json:"user_key"`
	App       string    `json:"app"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Manager struct {
	cache      cache.Cache
	cookieName string
	ttl        time.Duration
	secure     bool
}

func NewManager(c cache.Cache, cookieName string, ttl time.Duration, secure bool) *Manager {
	return &Manager{cache: c, cookieName: cookieName, ttl: ttl, secure: secure}
}

func key(id string) string { return "session:" + id }

// Establish creates a session for the user and sets the cookie.
func (m *Manager) Establish(ctx context.Context, w http.ResponseWriter, userKey, app string, roles []string) (*Session, error) {
	now := time.Now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		UserKey:   userKey,
		App:       app,
		Roles:     roles,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	m.cache.Set(key(s.ID), b, m.ttl)

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
	return s, nil
}

// FromRequest loads the session referenced by the request cookie.
func (m *Manager) FromRequest(r *http.Request) (*Session, error) {
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNoSession
	}
	b, ok := m.cache.Get(key(c.Value))
	if !ok {
		return nil, ErrNoSession
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, ErrNoSession
	}
	if time.Now().After(s.ExpiresAt) {
		m.cache.Delete(key(c.Value))
		return nil, ErrNoSession
	}
	return &s, nil
}

// Destroy drops the session record and clears the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
		m.cache.Delete(key(c.Value))
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
