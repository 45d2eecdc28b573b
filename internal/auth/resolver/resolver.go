// Package resolver maps a provider identity onto a local account under an
// app's namespace convention: find-or-create keyed by (possibly prefixed)
// email, plus role reconciliation where the app asks for it.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexiconhq/tenant-auth/internal/config"
	"github.com/lexiconhq/tenant-auth/internal/metrics"
	"github.com/lexiconhq/tenant-auth/internal/oauth/auth0"
	"github.com/lexiconhq/tenant-auth/internal/observability/logger"
	"github.com/lexiconhq/tenant-auth/internal/store/core"
)

// ErrMissingEmail means the provider identity carried no email claim;
// resolution is impossible without the correlation key.
var ErrMissingEmail = errors.New("resolver: email not found in provider identity")

type Resolver struct {
	repo core.Repository
}

func New(repo core.Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve finds or creates the local account for the identity under the
// app's namespace. All writes are committed before the caller establishes
// a session; a crash in between leaves an orphaned-but-valid account that
// the next login finds.
func (r *Resolver) Resolve(ctx context.Context, id *auth0.Identity, slug string, app config.App) (*core.User, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("resolver"), logger.App(slug))

	email := strings.TrimSpace(id.Email)
	if email == "" {
		return nil, ErrMissingEmail
	}
	key := app.Prefix + email

	// Soft namespace invariant: a sibling app may hold an account for the
	// same provider email. Warn only; exclusivity is not enforced.
	if app.SiblingPrefix != "" {
		siblingKey := app.SiblingPrefix + email
		if exists, err := r.repo.UserExists(ctx, siblingKey); err == nil && exists {
			log.Warn("sibling account exists for same provider email, creating separate account",
				logger.String("sibling_key", siblingKey),
				logger.UserKey(key),
			)
		}
	}

	u, err := r.repo.GetUserByKey(ctx, key)
	switch {
	case err == nil:
		if len(app.EssentialRoles) > 0 {
			if err := r.reconcileRoles(ctx, key, app.EssentialRoles); err != nil {
				return nil, err
			}
		}
		return u, nil

	case errors.Is(err, core.ErrNotFound):
		return r.create(ctx, log, id, slug, email, key, app)

	default:
		return nil, err
	}
}

func (r *Resolver) create(ctx context.Context, log *zap.Logger, id *auth0.Identity, slug, email, key string, app config.App) (*core.User, error) {
	first := id.GivenName
	if first == "" {
		first = email
		if at := strings.IndexByte(email, '@'); at > 0 {
			first = email[:at]
		}
	}

	u := &core.User{
		ID:        uuid.NewString(),
		Key:       key,
		Email:     email,
		FirstName: first,
		LastName:  id.FamilyName,
		Enabled:   true,
		UserType:  "System User",
	}
	if app.Prefix != "" {
		u.Bio = fmt.Sprintf("Account authenticated via identity provider (%s)", email)
	}

	err := r.repo.CreateUser(ctx, u)
	if errors.Is(err, core.ErrConflict) {
		// Lost a concurrent first-login race; the store's uniqueness
		// constraint made the other writer win. Load theirs.
		log.Info("account created concurrently, loading existing", logger.UserKey(key))
		return r.repo.GetUserByKey(ctx, key)
	}
	if err != nil {
		return nil, err
	}

	for _, role := range app.DefaultRoles {
		if err := r.repo.AddUserRole(ctx, key, role); err != nil {
			return nil, err
		}
	}

	metrics.AccountsCreated.WithLabelValues(slug).Inc()
	log.Info("created account", logger.UserKey(key), logger.Email(email))
	return u, nil
}

// reconcileRoles appends any essential role the account is missing.
func (r *Resolver) reconcileRoles(ctx context.Context, key string, essential []string) error {
	current, err := r.repo.ListUserRoles(ctx, key)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(current))
	for _, role := range current {
		have[role] = true
	}
	for _, role := range essential {
		if have[role] {
			continue
		}
		if err := r.repo.AddUserRole(ctx, key, role); err != nil {
			return err
		}
	}
	return nil
}
