// Package controllers holds the thin HTTP handlers; decision logic lives
// in the services.
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lexiconhq/tenant-auth/internal/auth/resolver"
	"github.com/lexiconhq/tenant-auth/internal/http/httperrors"
	"github.com/lexiconhq/tenant-auth/internal/http/services"
	"github.com/lexiconhq/tenant-auth/internal/oauth/auth0"
	"github.com/lexiconhq/tenant-auth/internal/oauth/state"
	"github.com/lexiconhq/tenant-auth/internal/observability/logger"
	"github.com/lexiconhq/tenant-auth/internal/session"
	"github.com/lexiconhq/tenant-auth/internal/store/core"
)

type AuthController struct {
	login    *services.LoginService
	sessions *session.Manager
	repo     core.Repository
}

func NewAuthController(login *services.LoginService, sessions *session.Manager, repo core.Repository) *AuthController {
	return &AuthController{login: login, sessions: sessions, repo: repo}
}

// Login handles GET /auth/{app}/login: redirect to the provider.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "app")

	redirectURL, err := c.login.BeginLogin(r.Context(), slug)
	if err != nil {
		if errors.Is(err, services.ErrUnknownApp) {
			httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("unknown app"))
			return
		}
		logger.From(r.Context()).Error("begin login failed", logger.App(slug), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// Callback handles GET /auth/{app}/callback: complete the flow, establish
// the session and land the user in the app.
func (c *AuthController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "app")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.App(slug))

	app, ok := c.login.App(slug)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("unknown app"))
		return
	}

	q := r.URL.Query()
	user, err := c.login.CompleteLogin(ctx,
		slug,
		strings.TrimSpace(q.Get("code")),
		strings.TrimSpace(q.Get("state")),
		strings.TrimSpace(q.Get("error")),
	)
	if err != nil {
		log.Warn("callback failed", logger.Err(err))
		httperrors.WriteError(w, mapLoginError(err))
		return
	}

	roles, err := c.repo.ListUserRoles(ctx, user.Key)
	if err != nil {
		log.Error("loading roles failed", logger.UserKey(user.Key), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal)
		return
	}

	if _, err := c.sessions.Establish(ctx, w, user.Key, slug, roles); err != nil {
		log.Error("session establishment failed", logger.UserKey(user.Key), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, app.Landing, http.StatusFound)
}

// Logout handles POST /auth/logout.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	c.sessions.Destroy(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func mapLoginError(err error) *httperrors.AppError {
	switch {
	case errors.Is(err, services.ErrProvider):
		return httperrors.ErrBadRequest.WithDetail(err.Error()).WithCause(err)
	case errors.Is(err, services.ErrMissingCode):
		return httperrors.ErrBadRequest.WithDetail("authorization code not received").WithCause(err)
	case errors.Is(err, state.ErrInvalid), errors.Is(err, state.ErrExpired), errors.Is(err, state.ErrAppMismatch):
		return httperrors.ErrBadRequest.WithDetail("invalid or expired login attempt").WithCause(err)
	case errors.Is(err, auth0.ErrTokenExchange):
		return httperrors.ErrBadRequest.WithDetail("failed to get access token").WithCause(err)
	case errors.Is(err, resolver.ErrMissingEmail):
		return httperrors.ErrBadRequest.WithDetail("email not found in provider user info").WithCause(err)
	default:
		return httperrors.ErrInternal.WithCause(err)
	}
}
