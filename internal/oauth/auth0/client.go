// Package auth0 implements the Auth0 authorization-code exchange. Auth0 is
// used as a plain OAuth 2.0 provider here: the code is exchanged for an
// access token and identity comes from the /userinfo endpoint, not from an
// ID token.
package auth0

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Scope requested on every login.
const Scope = "openid profile email"

// ErrTokenExchange is returned when the token endpoint answers without an
// access token.
var ErrTokenExchange = errors.New("auth0: no access token in response")

// Client talks to one Auth0 application (client id/secret pair).
type Client struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	baseURL string
	http    *http.Client
}

// New creates a client for the given Auth0 domain. domain is the bare
// tenant domain (e.g. "acme.eu.auth0.com"); a full URL is accepted too,
// which tests use to point at a local fake.
func New(domain, clientID, clientSecret, redirectURL string) *Client {
	base := domain
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return &Client{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		baseURL:      strings.TrimRight(base, "/"),
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthURL builds the /authorize redirect URL.
func (c *Client) AuthURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.ClientID)
	q.Set("redirect_uri", c.RedirectURL)
	q.Set("scope", Scope)
	q.Set("state", state)
	return c.baseURL + "/authorize?" + q.Encode()
}

// TokenResponse is the /oauth/token answer.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token,omitempty"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error,omitempty"`
	ErrorDesc   string `json:"error_description,omitempty"`
}

// ExchangeCode trades the authorization code for tokens. A response without
// an access token fails with ErrTokenExchange. No retry: the caller aborts
// the login attempt and the user restarts the flow.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	body, _ := json.Marshal(map[string]string{
		"grant_type":    "authorization_code",
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
		"code":          code,
		"redirect_uri":  c.RedirectURL,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/oauth/token", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tr TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("auth0: decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		if tr.Error != "" {
			return nil, fmt.Errorf("%w: %s %s", ErrTokenExchange, tr.Error, tr.ErrorDesc)
		}
		return nil, ErrTokenExchange
	}
	return &tr, nil
}

// Identity is the userinfo claim set this service consumes. Email is the
// sole correlation key for local accounts.
type Identity struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Name       string `json:"name"`
	Picture    string `json:"picture"`
}

// UserInfo fetches the identity claims with the access token.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/userinfo", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth0: userinfo status %d", resp.StatusCode)
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("auth0: decode userinfo: %w", err)
	}
	return &id, nil
}
