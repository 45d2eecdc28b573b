package auth0_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexiconhq/tenant-auth/internal/oauth/auth0"
)

func TestAuthURL(t *testing.T) {
	c := auth0.New("acme.eu.auth0.com", "cid", "csecret", "https://desk.example.com/auth/lexicon/callback")

	raw := c.AuthURL("state-token")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	require.Equal(t, "https", u.Scheme)
	require.Equal(t, "acme.eu.auth0.com", u.Host)
	require.Equal(t, "/authorize", u.Path)

	q := u.Query()
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "cid", q.Get("client_id"))
	require.Equal(t, "https://desk.example.com/auth/lexicon/callback", q.Get("redirect_uri"))
	require.Equal(t, "openid profile email", q.Get("scope"))
	require.Equal(t, "state-token", q.Get("state"))
}

func TestExchangeCode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/oauth/token", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "authorization_code", body["grant_type"])
		require.Equal(t, "cid", body["client_id"])
		require.Equal(t, "csecret", body["client_secret"])
		require.Equal(t, "the-code", body["code"])
		require.Equal(t, "http://localhost/cb", body["redirect_uri"])

		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at-123",
			"token_type":   "Bearer",
			"expires_in":   86400,
		})
	}))
	defer srv.Close()

	c := auth0.New(srv.URL, "cid", "csecret", "http://localhost/cb")
	tr, err := c.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	require.Equal(t, "at-123", tr.AccessToken)
}

func TestExchangeCode_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "code is expired",
		})
	}))
	defer srv.Close()

	c := auth0.New(srv.URL, "cid", "csecret", "http://localhost/cb")
	_, err := c.ExchangeCode(context.Background(), "stale-code")
	require.ErrorIs(t, err, auth0.ErrTokenExchange)
	require.Contains(t, err.Error(), "invalid_grant")
}

func TestExchangeCode_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := auth0.New(srv.URL, "cid", "csecret", "http://localhost/cb")
	_, err := c.ExchangeCode(context.Background(), "code")
	require.ErrorIs(t, err, auth0.ErrTokenExchange)
}

func TestUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/userinfo", r.URL.Path)
		require.Equal(t, "Bearer at-123", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]string{
			"sub":         "auth0|abc",
			"email":       "ada@example.com",
			"given_name":  "Ada",
			"family_name": "Lovelace",
		})
	}))
	defer srv.Close()

	c := auth0.New(srv.URL, "cid", "csecret", "http://localhost/cb")
	id, err := c.UserInfo(context.Background(), "at-123")
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", id.Email)
	require.Equal(t, "Ada", id.GivenName)
	require.Equal(t, "Lovelace", id.FamilyName)
}

func TestUserInfo_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := auth0.New(srv.URL, "cid", "csecret", "http://localhost/cb")
	_, err := c.UserInfo(context.Background(), "bad-token")
	require.Error(t, err)
}
