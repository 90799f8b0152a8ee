package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ecoruta/portal/internal/core/ports"
	"github.com/ecoruta/portal/internal/devserver"
	devconfig "github.com/ecoruta/portal/internal/infrastructure/config"
	dbmongo "github.com/ecoruta/portal/internal/infrastructure/db/mongo"
	dbredis "github.com/ecoruta/portal/internal/infrastructure/db/redis"
	devhttp "github.com/ecoruta/portal/internal/infrastructure/http"
	"github.com/ecoruta/portal/internal/infrastructure/http/handlers"
	"github.com/ecoruta/portal/internal/pkg/validation"
	"github.com/ecoruta/portal/pkg/logger"
)

func newDevserverCmd(app *App) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:         "devserver",
		Short:       "Run a local backend implementing the auth and user endpoints",
		Long:        "devserver serves /api/token/, /api/token/refresh/, /api/usuarios/ and /api/auth/logout/. Settings come from ECORUTA_DEV_* variables.",
		Annotations: map[string]string{annotationServer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := devconfig.Load(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			log := app.log.Level(logger.ParseLevel(cfg.LogLevel)).With().Str("component", "devserver").Logger()

			checks := map[string]handlers.Check{}
			users, err := app.devUsers(ctx, cfg, checks)
			if err != nil {
				return err
			}
			revoked, err := app.devRevocations(ctx, cfg, checks)
			if err != nil {
				return err
			}

			acc := devserver.NewAccounts(users, revoked, validation.New(), devserver.TokenConfig{
				Secret:        cfg.JWTSecret,
				AccessTTL:     cfg.AccessTTL,
				RefreshTTL:    cfg.RefreshTTL,
				RotateRefresh: cfg.RotateRefresh,
			}, log)

			e := devhttp.NewRouter(devhttp.Dependencies{
				Accounts:      acc,
				Authenticator: acc,
				Checks:        checks,
				Log:           log,
			})
			return runServer(ctx, e, ":"+cfg.Port, log)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (or ECORUTA_DEV_PORT)")
	return cmd
}

func (a *App) devUsers(ctx context.Context, cfg *devconfig.Config, checks map[string]handlers.Check) (ports.UserRepository, error) {
	if cfg.Mongo.URI == "" {
		return devserver.NewMemoryUsers(), nil
	}

	client, db, err := dbmongo.Connect(ctx, dbmongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "ecoruta-devserver",
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = client.Disconnect(context.Background()) })

	repo := dbmongo.NewUserRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure user indexes: %w", err)
	}
	checks["mongo"] = dbmongo.Ping(db)
	return repo, nil
}

func (a *App) devRevocations(ctx context.Context, cfg *devconfig.Config, checks map[string]handlers.Check) (ports.RevocationList, error) {
	if cfg.Redis.Addr == "" {
		return devserver.NewMemoryRevocations(), nil
	}

	client, err := dbredis.Connect(ctx, dbredis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = client.Close() })

	checks["redis"] = dbredis.Ping(client)
	return dbredis.NewRevocationList(client), nil
}
