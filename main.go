package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"todolist/auth"
	"todolist/config"
	"todolist/handlers"
	"todolist/repository"
	"todolist/services"
	"todolist/ui"
	"todolist/utils"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := utils.NewLogger(os.Stdout, cfg.LogLevel, cfg.Env)
	logger.Info("starting", slog.String("environment", cfg.Env))

	app, err := newApplication(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("startup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.HTTPAddr))
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
			app.closeStores()
			os.Exit(1)
		}
	}()

	// Handles SIGINT and SIGTERM.
	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, app.shutdownOperations())
	exitCode := <-wait
	logger.Info("application exited", slog.Int("exit_code", exitCode))
	os.Exit(exitCode)
}

type application struct {
	server *http.Server
	logger *slog.Logger
	// stores are closed only after the server has drained.
	stores map[string]func()
}

func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{logger: logger, stores: make(map[string]func())}

	users, tasks, err := app.openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := utils.OpenRedisPool(ctx, cfg.RedisURL)
	if err != nil {
		app.closeStores()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	app.stores["redis"] = func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis failed", slog.String("error", err.Error()))
		}
	}

	secret, err := cfg.SessionKey()
	if err != nil {
		app.closeStores()
		return nil, err
	}
	if cfg.EphemeralSecret() {
		logger.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}

	directory := services.NewUserDirectory(users, utils.NewPasswordHasher(cfg.BcryptCost), logger)
	if cfg.DefaultUsername != "" {
		if err := directory.EnsureDefaultUser(ctx, cfg.DefaultUsername, cfg.DefaultPassword); err != nil {
			app.closeStores()
			return nil, fmt.Errorf("create default user: %w", err)
		}
	}

	sessions := auth.NewSessions(redisClient, auth.SessionOptions{
		Secret:        secret,
		TTL:           cfg.SessionTTL,
		SecureCookies: cfg.CookieSecure,
	})
	gate := auth.NewGate(sessions, directory, logger)

	templates, err := ui.Templates()
	if err != nil {
		app.closeStores()
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	h := handlers.New(directory, services.NewTaskService(tasks, logger), sessions, gate, templates, logger)
	app.server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return app, nil
}

// openStorage connects to Postgres when DATABASE_URL is set and falls back
// to in-memory repositories otherwise.
func (a *application) openStorage(ctx context.Context, cfg *config.Config) (repository.UserRepository, repository.TaskRepository, error) {
	if cfg.DatabaseURL == "" {
		a.logger.Warn("DATABASE_URL not set, data is kept in memory only")
		return repository.NewMemoryUserRepository(), repository.NewMemoryTaskRepository(), nil
	}

	pool, err := utils.OpenDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := utils.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	a.stores["postgres"] = pool.Close
	return repository.NewPostgresUserRepository(pool), repository.NewPostgresTaskRepository(pool), nil
}

// shutdownOperations drains the http server first. Each store waits for
// that before closing so in-flight requests can finish their queries.
func (a *application) shutdownOperations() map[string]gfshutdown.Operation {
	drained := make(chan struct{})
	ops := map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			defer close(drained)
			a.logger.Info("shutting down http server")
			return a.server.Shutdown(ctx)
		},
	}
	for name, closeStore := range a.stores {
		ops[name] = func(ctx context.Context) error {
			select {
			case <-drained:
			case <-ctx.Done():
				return ctx.Err()
			}
			a.logger.Info("closing store", slog.String("store", name))
			closeStore()
			return nil
		}
	}
	return ops
}

func (a *application) closeStores() {
	for _, closeStore := range a.stores {
		closeStore()
	}
}
