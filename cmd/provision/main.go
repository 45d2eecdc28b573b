package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lexiconhq/tenant-auth/internal/config"
	"github.com/lexiconhq/tenant-auth/internal/metrics"
	"github.com/lexiconhq/tenant-auth/internal/observability/logger"
	"github.com/lexiconhq/tenant-auth/internal/provision"
	"github.com/lexiconhq/tenant-auth/internal/store/core"
	"github.com/lexiconhq/tenant-auth/internal/store/memory"
	"github.com/lexiconhq/tenant-auth/internal/store/pg"
	migrations "github.com/lexiconhq/tenant-auth/migrations/postgres"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath = os.Getenv("CONFIG_PATH")
		driver  string
		dsn     string
	)

	root := &cobra.Command{
		Use:           "provision",
		Short:         "Provision roles and permissions for the tenant apps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", cfgPath, "config file path (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&driver, "driver", "", "storage driver override: postgres | memory")
	root.PersistentFlags().StringVar(&dsn, "dsn", "", "storage DSN override (env STORAGE_DSN)")

	setup := func(cmd *cobra.Command) (context.Context, *provision.Provisioner, func(), error) {
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return nil, nil, nil, err
		}
		if driver != "" {
			cfg.Storage.Driver = driver
		}
		if dsn != "" {
			cfg.Storage.DSN = dsn
		}

		logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: "provision"})
		if err := metrics.Register(nil); err != nil {
			return nil, nil, nil, err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)

		repo, err := openStore(ctx, cfg)
		if err != nil {
			stop()
			return nil, nil, nil, err
		}
		cleanup := func() {
			repo.Close()
			stop()
			_ = logger.Sync()
		}
		return ctx, provision.New(repo), cleanup, nil
	}

	run := &cobra.Command{
		Use:   "run",
		Short: "Apply the full role and permission setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, p, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := p.Run(ctx); err != nil {
				return err
			}
			fmt.Println("provisioning complete")
			return nil
		},
	}

	roleCmd := &cobra.Command{
		Use:   "role <name>",
		Short: "Ensure a single desk role exists and is enabled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, p, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			desk, _ := cmd.Flags().GetBool("desk-access")
			if err := p.EnsureRole(ctx, args[0], desk); err != nil {
				return err
			}
			fmt.Printf("role %q ensured\n", args[0])
			return nil
		},
	}
	roleCmd.Flags().Bool("desk-access", true, "grant desk access")

	revokeCmd := &cobra.Command{
		Use:   "revoke <doctype> <role>",
		Short: "Remove all permission rules for a role on a doctype",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, p, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := p.RevokeDocPermission(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("permissions for %q on %q revoked\n", args[1], args[0])
			return nil
		},
	}

	root.AddCommand(run, roleCmd, revokeCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

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
