package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexiconhq/tenant-auth/internal/auth/resolver"
	"github.com/lexiconhq/tenant-auth/internal/config"
	"github.com/lexiconhq/tenant-auth/internal/metrics"
	"github.com/lexiconhq/tenant-auth/internal/oauth/auth0"
	"github.com/lexiconhq/tenant-auth/internal/oauth/state"
	"github.com/lexiconhq/tenant-auth/internal/observability/logger"
	"github.com/lexiconhq/tenant-auth/internal/store/core"
)

var (
	// ErrUnknownApp means the slug is not a configured application.
	ErrUnknownApp = errors.New("services: unknown app")
	// ErrProvider means the provider reported an error on callback.
	ErrProvider = errors.New("services: provider returned an error")
	// ErrMissingCode means the callback carried no authorization code.
	ErrMissingCode = errors.New("services: authorization code not received")
)

// LoginService drives the authorization-code flow for every configured app.
type LoginService struct {
	cfg      *config.Config
	clients  map[string]*auth0.Client
	signer   *state.Signer
	resolver *resolver.Resolver
}

func NewLoginService(cfg *config.Config, signer *state.Signer, res *resolver.Resolver) *LoginService {
	clients := make(map[string]*auth0.Client, len(cfg.Apps))
	for slug, app := range cfg.Apps {
		clients[slug] = auth0.New(cfg.Auth0.Domain, app.ClientID, app.ClientSecret, cfg.RedirectURI(slug))
	}
	return &LoginService{cfg: cfg, clients: clients, signer: signer, resolver: res}
}

// App returns the namespace policy for a slug.
func (s *LoginService) App(slug string) (config.App, bool) {
	app, ok := s.cfg.Apps[slug]
	return app, ok
}

// BeginLogin builds the provider authorization URL with a fresh signed
// state token.
func (s *LoginService) BeginLogin(ctx context.Context, slug string) (string, error) {
	client, ok := s.clients[slug]
	if !ok {
		return "", ErrUnknownApp
	}
	st, err := s.signer.Sign(slug)
	if err != nil {
		return "", err
	}
	metrics.LoginAttempts.WithLabelValues(slug, "started").Inc()
	return client.AuthURL(st), nil
}

// CompleteLogin validates the callback, exchanges the code, fetches the
// provider identity and resolves the local account. State is verified
// before any network call, as is the presence of the code.
func (s *LoginService) CompleteLogin(ctx context.Context, slug, code, stateTok, errParam string) (*core.User, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("login"), logger.App(slug))

	app, ok := s.cfg.Apps[slug]
	if !ok {
		return nil, ErrUnknownApp
	}
	client := s.clients[slug]

	if errParam != "" {
		metrics.LoginAttempts.WithLabelValues(slug, "failure").Inc()
		return nil, fmt.Errorf("%w: %s", ErrProvider, errParam)
	}
	if code == "" {
		metrics.LoginAttempts.WithLabelValues(slug, "failure").Inc()
		return nil, ErrMissingCode
	}
	if _, err := s.signer.Verify(stateTok, slug); err != nil {
		metrics.LoginAttempts.WithLabelValues(slug, "failure").Inc()
		return nil, err
	}

	tokens, err := client.ExchangeCode(ctx, code)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(slug, "failure").Inc()
		return nil, err
	}
	identity, err := client.UserInfo(ctx, tokens.AccessToken)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(slug, "failure").Inc()
		return nil, err
	}

	user, err := s.resolver.Resolve(ctx, identity, slug, app)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(slug, "failure").Inc()
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues(slug, "success").Inc()
	log.Info("login completed", logger.UserKey(user.Key))
	return user, nil
}
