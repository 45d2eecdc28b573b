package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lexiconhq/tenant-auth/internal/auth/resolver"
	"github.com/lexiconhq/tenant-auth/internal/cache"
	"github.com/lexiconhq/tenant-auth/internal/config"
	"github.com/lexiconhq/tenant-auth/internal/http/controllers"
	"github.com/lexiconhq/tenant-auth/internal/http/router"
	"github.com/lexiconhq/tenant-auth/internal/http/services"
	"github.com/lexiconhq/tenant-auth/internal/oauth/state"
	"github.com/lexiconhq/tenant-auth/internal/session"
	"github.com/lexiconhq/tenant-auth/internal/store/core"
	"github.com/lexiconhq/tenant-auth/internal/store/memory"
)

// fakeProvider imitates the Auth0 token and userinfo endpoints and counts
// how often they are hit.
type fakeProvider struct {
	srv   *httptest.Server
	hits  atomic.Int64
	email string
}

func newFakeProvider(email string) *fakeProvider {
	f := &fakeProvider{email: email}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		switch r.URL.Path {
		case "/oauth/token":
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "at-fake",
				"token_type":   "Bearer",
			})
		case "/userinfo":
			json.NewEncoder(w).Encode(map[string]string{
				"sub":         "auth0|fake",
				"email":       f.email,
				"given_name":  "Ada",
				"family_name": "Lovelace",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	return f
}

type env struct {
	handler  http.Handler
	repo     *memory.Store
	signer   *state.Signer
	provider *fakeProvider
}

func newEnv(t *testing.T) *env {
	t.Helper()

	provider := newFakeProvider("ada@example.com")
	t.Cleanup(provider.srv.Close)

	cfg := config.Default()
	cfg.Auth0.Domain = provider.srv.URL
	cfg.State.Secret = "test-secret"

	repo := memory.New()
	repo.SeedDocType("Vendor")
	repo.SeedVendor(core.Vendor{Name: "V-001", Type: "Supplier", Email: "v@example.com", Status: "Active"})
	repo.SeedSocialLoginProvider(core.SocialLoginProvider{
		Name: "lexicon", ProviderName: "Lexicon", Enabled: true,
	})
	repo.SeedLDAP(false)

	c := cache.NewMemory(time.Minute)
	sessions := session.NewManager(c, "sid", time.Hour, false)
	signer := state.NewSigner(cfg.State.Secret, time.Minute)
	res := resolver.New(repo)

	handler := router.New(router.Deps{
		Auth:         controllers.NewAuthController(services.NewLoginService(cfg, signer, res), sessions, repo),
		Vendors:      controllers.NewVendorController(services.NewVendorService(repo)),
		LoginContext: controllers.NewLoginContextController(services.NewLoginContextService(repo, c)),
		Health:       controllers.NewHealthController(repo),
		Sessions:     sessions,
	})
	return &env{handler: handler, repo: repo, signer: signer, provider: provider}
}

func (e *env) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// login runs the full flow for an app and returns the session cookie.
func (e *env) login(t *testing.T, app string) *http.Cookie {
	t.Helper()

	rec := e.do(httptest.NewRequest("GET", "/auth/"+app+"/login", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	st := loc.Query().Get("state")
	require.NotEmpty(t, st)

	rec = e.do(httptest.NewRequest("GET", "/auth/"+app+"/callback?code=fake-code&state="+url.QueryEscape(st), nil))
	require.Equal(t, http.StatusFound, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "sid" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestLoginFlow_Lexicon(t *testing.T) {
	e := newEnv(t)

	rec := e.do(httptest.NewRequest("GET", "/auth/lexicon/login", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/authorize", loc.Path)
	require.Equal(t, "code", loc.Query().Get("response_type"))
	require.Equal(t, "openid profile email", loc.Query().Get("scope"))

	st := loc.Query().Get("state")
	rec = e.do(httptest.NewRequest("GET", "/auth/lexicon/callback?code=c&state="+url.QueryEscape(st), nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/app", rec.Header().Get("Location"))

	u, err := e.repo.GetUserByKey(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", u.Email)

	roles, err := e.repo.ListUserRoles(context.Background(), u.Key)
	require.NoError(t, err)
	require.Equal(t, []string{"Desk User"}, roles)
}

func TestLoginFlow_VendorManagerLanding(t *testing.T) {
	e := newEnv(t)

	rec := e.do(httptest.NewRequest("GET", "/auth/vendor_manager/login", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	loc, _ := url.Parse(rec.Header().Get("Location"))
	st := loc.Query().Get("state")

	rec = e.do(httptest.NewRequest("GET", "/auth/vendor_manager/callback?code=c&state="+url.QueryEscape(st), nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/app/vendor", rec.Header().Get("Location"))

	_, err := e.repo.GetUserByKey(context.Background(), "vendor-ada@example.com")
	require.NoError(t, err)
}

func TestLogin_UnknownApp(t *testing.T) {
	e := newEnv(t)

	rec := e.do(httptest.NewRequest("GET", "/auth/nope/login", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(httptest.NewRequest("GET", "/auth/nope/callback?code=c&state=s", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCallback_ProviderErrorNeverCreatesAccount(t *testing.T) {
	e := newEnv(t)

	st, err := e.signer.Sign("lexicon")
	require.NoError(t, err)

	rec := e.do(httptest.NewRequest("GET",
		"/auth/lexicon/callback?error=access_denied&state="+url.QueryEscape(st), nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	exists, err := e.repo.UserExists(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.False(t, exists)
	require.Zero(t, e.provider.hits.Load(), "provider must not be contacted")
}

func TestCallback_MissingCode(t *testing.T) {
	e := newEnv(t)

	st, err := e.signer.Sign("lexicon")
	require.NoError(t, err)

	rec := e.do(httptest.NewRequest("GET", "/auth/lexicon/callback?state="+url.QueryEscape(st), nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, e.provider.hits.Load())
}

func TestCallback_ForgedState(t *testing.T) {
	e := newEnv(t)

	rec := e.do(httptest.NewRequest("GET", "/auth/lexicon/callback?code=c&state=forged", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, e.provider.hits.Load(), "state must be rejected before the token exchange")
}

func TestCallback_StateForOtherApp(t *testing.T) {
	e := newEnv(t)

	st, err := e.signer.Sign("vendor_manager")
	require.NoError(t, err)

	rec := e.do(httptest.NewRequest("GET", "/auth/lexicon/callback?code=c&state="+url.QueryEscape(st), nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, e.provider.hits.Load())
}

func TestVendors_RequiresSession(t *testing.T) {
	e := newEnv(t)

	rec := e.do(httptest.NewRequest("GET", "/vendors", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVendors_ListsForAuthenticatedUser(t *testing.T) {
	e := newEnv(t)
	cookie := e.login(t, "lexicon")

	req := httptest.NewRequest("GET", "/vendors", nil)
	req.AddCookie(cookie)
	rec := e.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var vendors []core.Vendor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vendors))
	require.Len(t, vendors, 1)
	require.Equal(t, "V-001", vendors[0].Name)
}

func TestRecords_DirectAccessGatedByDocPerms(t *testing.T) {
	e := newEnv(t)
	cookie := e.login(t, "lexicon")

	// Desk User holds no doc permission on Vendor.
	req := httptest.NewRequest("GET", "/records/Vendor", nil)
	req.AddCookie(cookie)
	rec := e.do(req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Granting read to Desk User opens the direct path for the same
	// session; the rules are checked per request, not at login.
	require.NoError(t, e.repo.CreateDocPerm(context.Background(), &core.DocPerm{
		DocType: "Vendor", Role: "Desk User",
		Flags: core.PermFlags{Read: true}, Custom: true,
	}))

	rec = e.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRecords_UnknownDocType(t *testing.T) {
	e := newEnv(t)
	cookie := e.login(t, "lexicon")

	req := httptest.NewRequest("GET", "/records/Widget", nil)
	req.AddCookie(cookie)
	rec := e.do(req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginContext_Public(t *testing.T) {
	e := newEnv(t)

	rec := e.do(httptest.NewRequest("GET", "/login/context", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var lc struct {
		SocialLogin []struct {
			ProviderName string `json:"provider_name"`
			AuthURL      string `json:"auth_url"`
		} `json:"social_login"`
		LDAPSettings struct {
			Enabled bool `json:"enabled"`
		} `json:"ldap_settings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lc))
	require.Len(t, lc.SocialLogin, 1)
	require.Equal(t, "Lexicon", lc.SocialLogin[0].ProviderName)
	require.Equal(t, "/auth/lexicon/login", lc.SocialLogin[0].AuthURL)
	require.False(t, lc.LDAPSettings.Enabled)
}

func TestLogout(t *testing.T) {
	e := newEnv(t)
	cookie := e.login(t, "lexicon")

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	req.AddCookie(cookie)
	rec := e.do(req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The old cookie no longer authenticates.
	req = httptest.NewRequest("GET", "/vendors", nil)
	req.AddCookie(cookie)
	rec = e.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)

	rec := e.do(httptest.NewRequest("GET", "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)

	rec := e.do(httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRepeatLogin_SingleAccount(t *testing.T) {
	e := newEnv(t)

	e.login(t, "lexicon")
	e.login(t, "lexicon")

	roles, err := e.repo.ListUserRoles(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, []string{"Desk User"}, roles)
}
