package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lexiconhq/tenant-auth/internal/cache"
	"github.com/lexiconhq/tenant-auth/internal/observability/logger"
	"github.com/lexiconhq/tenant-auth/internal/store/core"
)

// LoginContext is what the login page needs to render.
type LoginContext struct {
	SocialLogin  []SocialLoginEntry `json:"social_login"`
	LDAPSettings core.LDAPSettings  `json:"ldap_settings"`
}

type SocialLoginEntry struct {
	ProviderName string `json:"provider_name"`
	AuthURL      string `json:"auth_url"`
	Icon         string `json:"icon"`
}

const loginContextKey = "login_context"
const loginContextTTL = 30 * time.Second

type LoginContextService struct {
	repo  core.Repository
	cache cache.Cache
}

func NewLoginContextService(repo core.Repository, c cache.Cache) *LoginContextService {
	return &LoginContextService{repo: repo, cache: c}
}

// Build gathers the enabled social login providers and the LDAP flag.
// Either lookup failing degrades that part to its default (empty provider
// list, LDAP disabled) with the cause logged, never a failed page render.
func (s *LoginContextService) Build(ctx context.Context) *LoginContext {
	if b, ok := s.cache.Get(loginContextKey); ok {
		var lc LoginContext
		if json.Unmarshal(b, &lc) == nil {
			return &lc
		}
	}

	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("logincontext"))
	lc := &LoginContext{SocialLogin: []SocialLoginEntry{}}

	providers, err := s.repo.ListSocialLoginProviders(ctx)
	if err != nil {
		log.Warn("social login lookup failed, rendering without providers", logger.Err(err))
	} else {
		for _, p := range providers {
			lc.SocialLogin = append(lc.SocialLogin, SocialLoginEntry{
				ProviderName: p.ProviderName,
				AuthURL:      "/auth/" + p.Name + "/login",
				Icon:         p.Icon,
			})
		}
	}

	ldap, err := s.repo.GetLDAPSettings(ctx)
	if err != nil {
		log.Warn("ldap settings lookup failed, rendering as disabled", logger.Err(err))
	} else {
		lc.LDAPSettings = *ldap
	}

	if b, err := json.Marshal(lc); err == nil {
		s.cache.Set(loginContextKey, b, loginContextTTL)
	}
	return lc
}
