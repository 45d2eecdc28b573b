package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/lexiconhq/tenant-auth/internal/auth/resolver"
	"github.com/lexiconhq/tenant-auth/internal/cache"
	"github.com/lexiconhq/tenant-auth/internal/config"
	"github.com/lexiconhq/tenant-auth/internal/http/controllers"
	"github.com/lexiconhq/tenant-auth/internal/http/router"
	"github.com/lexiconhq/tenant-auth/internal/http/services"
	"github.com/lexiconhq/tenant-auth/internal/metrics"
	"github.com/lexiconhq/tenant-auth/internal/oauth/state"
	"github.com/lexiconhq/tenant-auth/internal/observability/logger"
	"github.com/lexiconhq/tenant-auth/internal/session"
	"github.com/lexiconhq/tenant-auth/internal/store/core"
	"github.com/lexiconhq/tenant-auth/internal/store/memory"
	"github.com/lexiconhq/tenant-auth/internal/store/pg"
	migrations "github.com/lexiconhq/tenant-auth/migrations/postgres"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		// Logger is not up yet.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "tenant-auth",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	if err := metrics.Register(nil); err != nil {
		log.Fatal("register metrics", logger.Err(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("open store", logger.Err(err))
	}
	defer repo.Close()

	c := cache.New(cache.Config{
		Kind:       cfg.Cache.Kind,
		RedisAddr:  cfg.Cache.Redis.Addr,
		RedisDB:    cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: cfg.CacheTTL(),
	})

	sessions := session.NewManager(c, cfg.Session.CookieName, cfg.SessionTTL(), cfg.Session.Secure)
	signer := state.NewSigner(cfg.State.Secret, cfg.StateTTL())
	res := resolver.New(repo)

	handler := router.New(router.Deps{
		Auth:         controllers.NewAuthController(services.NewLoginService(cfg, signer, res), sessions, repo),
		Vendors:      controllers.NewVendorController(services.NewVendorService(repo)),
		LoginContext: controllers.NewLoginContextController(services.NewLoginContextService(repo, c)),
		Health:       controllers.NewHealthController(repo),
		Sessions:     sessions,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server", logger.Err(err))
	}
	log.Info("shutdown complete")
}

// openStore builds the repository for the configured driver. The postgres
// path applies the embedded migrations before serving traffic.
func openStore(ctx context.Context, cfg *config.Config) (core.Repository, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memory.New(), nil
	default:
		st, err := pg.Open(ctx, pg.Config{
			DSN:             cfg.Storage.DSN,
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		if err := st.RunMigrations(ctx, migrations.FS, "."); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	}
}
