package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/jackc/pgx/v5/pgxpool"

	migrations "github.com/plumecms/plume/db"
	"github.com/plumecms/plume/internal/accounts"
	"github.com/plumecms/plume/internal/config"
	"github.com/plumecms/plume/internal/content"
	"github.com/plumecms/plume/internal/db"
	"github.com/plumecms/plume/internal/handlers"
	"github.com/plumecms/plume/internal/logger"
	"github.com/plumecms/plume/internal/media"
	"github.com/plumecms/plume/internal/server"
	"github.com/plumecms/plume/internal/settings"
	"github.com/plumecms/plume/internal/storage"
	"github.com/plumecms/plume/internal/version"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,

			provideDBConn,
			provideStorageProvider,

			provideAccountRepository,
			provideContentRepository,
			provideMediaRepository,
			provideSettingsRepository,

			accounts.NewService,
			content.NewService,
			media.NewService,
			provideSettingsService,

			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(provideAuthHandler),
			provideServerHandler(handlers.NewContentHandler),
			provideServerHandler(handlers.NewMediaHandler),
			provideServerHandler(handlers.NewSettingsHandler),

			provideServer,
		),
		fx.Invoke(
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func runMigrate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: plume migrate up|down|version|force N")
	}
	cfg, err := provideConfig()
	if err != nil {
		return err
	}
	log := provideLogger(cfg)
	sub, err := fs.Sub(migrations.MigrationsFS, "migrations")
	if err != nil {
		return err
	}
	return db.RunMigrate(log, cfg.Postgres, sub, args[0], args[1:])
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.Repository.Driver != "postgres" {
		return nil, nil
	}
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			conn.Close()
			return nil
		},
	})
	return conn, nil
}

func provideStorageProvider(cfg config.Config) (storage.Provider, error) {
	switch cfg.Storage.Driver {
	case "", "local":
		return storage.NewLocal(cfg.Storage.DataRoot)
	case "s3":
		return storage.NewS3(cfg.Storage.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func provideAccountRepository(cfg config.Config, pool *pgxpool.Pool) (accounts.Repository, error) {
	switch cfg.Repository.Driver {
	case "postgres":
		return accounts.NewPostgresRepository(pool), nil
	case "memory":
		return accounts.NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown repository driver %q", cfg.Repository.Driver)
	}
}

func provideContentRepository(cfg config.Config, pool *pgxpool.Pool) (content.Repository, error) {
	switch cfg.Repository.Driver {
	case "postgres":
		return content.NewPostgresRepository(pool), nil
	case "memory":
		return content.NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown repository driver %q", cfg.Repository.Driver)
	}
}

func provideMediaRepository(cfg config.Config, pool *pgxpool.Pool) (media.Repository, error) {
	switch cfg.Repository.Driver {
	case "postgres":
		return media.NewPostgresRepository(pool), nil
	case "memory":
		return media.NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown repository driver %q", cfg.Repository.Driver)
	}
}

func provideSettingsRepository(cfg config.Config, pool *pgxpool.Pool) (settings.Repository, error) {
	switch cfg.Repository.Driver {
	case "postgres":
		return settings.NewPostgresRepository(pool), nil
	case "memory":
		return settings.NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown repository driver %q", cfg.Repository.Driver)
	}
}

func provideSettingsService(log *slog.Logger, repo settings.Repository, cfg config.Config) *settings.Service {
	return settings.NewService(log, repo, cfg.Upload)
}

func provideAuthHandler(log *slog.Logger, service *accounts.Service, cfg config.Config) (*handlers.AuthHandler, error) {
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required in config.toml")
	}
	expiresIn, err := time.ParseDuration(cfg.Auth.JWTExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("parse auth.jwt_expires_in: %w", err)
	}
	return handlers.NewAuthHandler(log, service, cfg.Auth.JWTSecret, expiresIn), nil
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.Config.Auth.JWTSecret, params.ServerHandlers...)
}

func startServer(
	lc fx.Lifecycle,
	logger *slog.Logger,
	srv *server.Server,
	shutdowner fx.Shutdowner,
	cfg config.Config,
	accountService *accounts.Service,
) {
	fmt.Printf("Starting Plume %s\n", version.GetInfo())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := accountService.EnsureAdmin(ctx,
				strings.TrimSpace(cfg.Admin.Username),
				strings.TrimSpace(cfg.Admin.Password),
			); err != nil {
				return err
			}

			go func() {
				if err := srv.Start(); err != nil { // block until server is stopped
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown() // shutdown the application if the server fails to start
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			// graceful shutdown
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
