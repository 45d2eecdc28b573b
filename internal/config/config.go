package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// App holds the per-application namespace policy. The Lexicon/Vendor
// Manager asymmetry is configuration, not hardcoded policy: prefix,
// default roles, essential roles and the landing path all live here.
type App struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`

	// Prefix is prepended to the provider email to form the local account
	// key. Empty means the raw email is the key.
	Prefix string `yaml:"prefix"`

	// SiblingPrefix, when set, names another app's prefix to check for a
	// same-email sibling account. A hit is logged as a warning only; the
	// namespace invariant is soft.
	SiblingPrefix string `yaml:"sibling_prefix"`

	// DefaultRoles are assigned when an account is first created.
	DefaultRoles []string `yaml:"default_roles"`

	// EssentialRoles are reconciled on every login of an existing account.
	// Empty disables reconciliation.
	EssentialRoles []string `yaml:"essential_roles"`

	// Landing is the post-login redirect path.
	Landing string `yaml:"landing"`
}

type Config struct {
	App struct {
		// dev | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
		// BaseURL is the externally visible origin used to build the OAuth
		// redirect URIs, e.g. https://desk.example.com
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"` // postgres | memory
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Auth0 struct {
		Domain string `yaml:"domain"`
	} `yaml:"auth0"`

	Apps map[string]App `yaml:"apps"`

	Session struct {
		CookieName string `yaml:"cookie_name"`
		TTL        string `yaml:"ttl"`
		Secure     bool   `yaml:"secure"`
	} `yaml:"session"`

	State struct {
		// Secret signs the OAuth state JWT. Required in prod.
		Secret string `yaml:"secret"`
		TTL    string `yaml:"ttl"`
	} `yaml:"state"`
}

// Load reads the YAML config, applies defaults and environment overrides.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	c.applyEnv()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns a config with only defaults applied. Used by tests and by
// the provision CLI when no config file is given.
func Default() *Config {
	var c Config
	c.applyDefaults()
	c.applyEnv()
	return &c
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.Storage.Postgres.MaxConns == 0 {
		c.Storage.Postgres.MaxConns = 10
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "sid"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "12h"
	}
	if c.State.TTL == "" {
		c.State.TTL = "5m"
	}

	if c.Apps == nil {
		c.Apps = map[string]App{}
	}
	// Built-in tenant apps. A YAML block with the same slug overrides the
	// whole entry.
	if _, ok := c.Apps["lexicon"]; !ok {
		c.Apps["lexicon"] = App{
			DefaultRoles: []string{"Desk User"},
			Landing:      "/app",
		}
	}
	if _, ok := c.Apps["vendor_manager"]; !ok {
		c.Apps["vendor_manager"] = App{
			Prefix:         "vendor-",
			SiblingPrefix:  "lexicon-",
			DefaultRoles:   []string{"System Manager", "Desk User"},
			EssentialRoles: []string{"System Manager", "Desk User"},
			Landing:        "/app/vendor",
		}
	}
	for slug, app := range c.Apps {
		if app.Landing == "" {
			app.Landing = "/app"
			c.Apps[slug] = app
		}
	}
}

// applyEnv overlays secrets from the environment. Env always wins over YAML
// so deployments never need credentials on disk.
func (c *Config) applyEnv() {
	c.Auth0.Domain = envOr("AUTH0_DOMAIN", c.Auth0.Domain)
	c.Storage.DSN = envOr("STORAGE_DSN", c.Storage.DSN)
	c.State.Secret = envOr("STATE_SECRET", c.State.Secret)

	for slug, app := range c.Apps {
		upper := strings.ToUpper(slug)
		app.ClientID = envOr("AUTH0_"+upper+"_CLIENT_ID", app.ClientID)
		app.ClientSecret = envOr("AUTH0_"+upper+"_CLIENT_SECRET", app.ClientSecret)
		c.Apps[slug] = app
	}
}

// validate rejects malformed durations instead of masking them with the
// defaults; a typo in a TTL should fail startup, not silently become 12h.
func (c *Config) validate() error {
	fields := []struct{ name, val string }{
		{"session.ttl", c.Session.TTL},
		{"state.ttl", c.State.TTL},
		{"cache.memory.default_ttl", c.Cache.Memory.DefaultTTL},
	}
	for _, f := range fields {
		d, err := time.ParseDuration(f.val)
		if err != nil {
			return fmt.Errorf("config: invalid %s %q: %w", f.name, f.val, err)
		}
		if d <= 0 {
			return fmt.Errorf("config: %s must be positive, got %q", f.name, f.val)
		}
	}
	return nil
}

// SessionTTL parses the session TTL, defaulting to 12h on a bad value.
func (c *Config) SessionTTL() time.Duration {
	return durOr(c.Session.TTL, 12*time.Hour)
}

// StateTTL parses the state token TTL, defaulting to 5m on a bad value.
func (c *Config) StateTTL() time.Duration {
	return durOr(c.State.TTL, 5*time.Minute)
}

// CacheTTL parses the memory cache default TTL, defaulting to 2m.
func (c *Config) CacheTTL() time.Duration {
	return durOr(c.Cache.Memory.DefaultTTL, 2*time.Minute)
}

// RedirectURI builds the per-app OAuth callback URL.
func (c *Config) RedirectURI(slug string) string {
	return strings.TrimRight(c.Server.BaseURL, "/") + "/auth/" + slug + "/callback"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
