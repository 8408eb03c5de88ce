// Command devconnector runs the DevConnector account API and its schema migrations.
//
// @title DevConnector API
// @version 1.0
// @description User registration and session API.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-auth-token
// @description Session token returned by POST /api/users
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/user/devconnector-go/auth"
	"github.com/user/devconnector-go/avatar"
	"github.com/user/devconnector-go/config"
	"github.com/user/devconnector-go/db"
	_ "github.com/user/devconnector-go/docs" // Swagger spec registration
	"github.com/user/devconnector-go/logging"
	"github.com/user/devconnector-go/metrics"
	"github.com/user/devconnector-go/users"
)

func main() {
	// In production variables are set directly; .env is a development convenience.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: error loading .env file: %v", err)
	}

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "devconnector",
		Usage: "account registration API",
		// Running without a subcommand starts the server.
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the HTTP server",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "manage the database schema",
				Subcommands: []*cli.Command{
					{Name: "up", Usage: "apply all pending migrations", Action: migrateUp},
					{Name: "down", Usage: "roll back every migration", Action: migrateDown},
					{Name: "version", Usage: "print the current schema version", Action: migrateVersion},
				},
			},
		},
	}
}

func serve(c *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		store  users.Store
		health Pinger
	)
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to create database pool: %w", err)
		}
		defer pool.Close()
		store = users.NewPostgresStore(pool)
		health = pool
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; accounts are lost on restart")
		store = users.NewMemoryStore()
	}

	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := auth.NewJWTIssuer(*cfg.Auth)
	if err != nil {
		return err
	}

	userService := users.NewUserService(users.Deps{
		Store: store,
		Avatars: avatar.NewGenerator(avatar.Options{
			Size:    cfg.Avatar.Size,
			Rating:  cfg.Avatar.Rating,
			Default: cfg.Avatar.Default,
		}),
		Hasher:   hasher,
		Tokens:   tokens,
		Recorder: metrics.Prometheus{},
		Logger:   logger,
	})

	handler := newRouter(routerDeps{
		Users:          users.NewUserHandlers(userService, logger),
		Tokens:         tokens,
		Logger:         logger,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Health:         health,
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", addr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}

func withMigrator(fn func(*db.Migrator) error) error {
	cfg, err := config.LoadPoolConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}
	m, err := db.NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func migrateUp(*cli.Context) error {
	return withMigrator(func(m *db.Migrator) error {
		if err := m.Up(); err != nil {
			return err
		}
		log.Println("migrations applied")
		return nil
	})
}

func migrateDown(*cli.Context) error {
	return withMigrator(func(m *db.Migrator) error {
		if err := m.Down(); err != nil {
			return err
		}
		log.Println("migrations rolled back")
		return nil
	})
}

func migrateVersion(*cli.Context) error {
	return withMigrator(func(m *db.Migrator) error {
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Printf("version %d (dirty: %t)", version, dirty)
		return nil
	})
}
