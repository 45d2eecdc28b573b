package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lexiconhq/tenant-auth/internal/cache"
	"github.com/lexiconhq/tenant-auth/internal/session"
)

func newManager(ttl time.Duration) *session.Manager {
	return session.NewManager(cache.NewMemory(time.Minute), "sid", ttl, false)
}

func TestEstablishAndLoad(t *testing.T) {
	m := newManager(time.Hour)
	rec := httptest.NewRecorder()

	s, err := m.Establish(context.Background(), rec, "ada@example.com", "lexicon", []string{"Desk User"})
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	require.Equal(t, "sid", c.Name)
	require.Equal(t, s.ID, c.Value)
	require.True(t, c.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)

	req := httptest.NewRequest("GET", "/vendors", nil)
	req.AddCookie(c)

	loaded, err := m.FromRequest(req)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", loaded.UserKey)
	require.Equal(t, "lexicon", loaded.App)
	require.Equal(t, []string{"Desk User"}, loaded.Roles)
}

func TestFromRequest_NoCookie(t *testing.T) {
	m := newManager(time.Hour)
	req := httptest.NewRequest("GET", "/", nil)

	_, err := m.FromRequest(req)
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestFromRequest_UnknownID(t *testing.T) {
	m := newManager(time.Hour)
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "nonexistent"})

	_, err := m.FromRequest(req)
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestDestroy(t *testing.T) {
	m := newManager(time.Hour)
	rec := httptest.NewRecorder()

	s, err := m.Establish(context.Background(), rec, "ada@example.com", "lexicon", nil)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: s.ID})

	rec2 := httptest.NewRecorder()
	m.Destroy(rec2, req)

	// Cookie cleared.
	cookies := rec2.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, -1, cookies[0].MaxAge)

	// Record gone.
	_, err = m.FromRequest(req)
	require.ErrorIs(t, err, session.ErrNoSession)
}
