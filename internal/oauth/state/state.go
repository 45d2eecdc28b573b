// Package state signs and verifies the OAuth anti-forgery state parameter.
// State is an HS256 JWT carrying the app slug, a random nonce and a short
// expiry; the callback rejects tokens that fail verification or name a
// different app, so a forged or replayed callback never reaches the token
// exchange.
package state

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Audience identifies login state tokens.
const Audience = "login-state"

var (
	ErrInvalid     = errors.New("invalid state token")
	ErrExpired     = errors.New("state token expired")
	ErrAppMismatch = errors.New("state app mismatch")
)

// Claims are the verified contents of a state token.
type Claims struct {
	App   string
	Nonce string
}

type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// Sign issues a state token for the app.
func (s *Signer) Sign(app string) (string, error) {
	now := time.Now().UTC()
	claims := jwtv5.MapClaims{
		"aud":   Audience,
		"exp":   now.Add(s.ttl).Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"app":   app,
		"nonce": newNonce(),
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify validates the token signature, audience, expiry and app binding.
func (s *Signer) Verify(token, app string) (*Claims, error) {
	tk, err := jwtv5.Parse(token,
		func(t *jwtv5.Token) (any, error) { return s.secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tk.Valid {
		return nil, ErrInvalid
	}

	mapClaims, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalid
	}
	if aud, _ := mapClaims["aud"].(string); aud != Audience {
		return nil, ErrInvalid
	}

	claims := &Claims{
		App:   getString(mapClaims, "app"),
		Nonce: getString(mapClaims, "nonce"),
	}
	if claims.App != app {
		return nil, ErrAppMismatch
	}
	return claims, nil
}

func newNonce() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
