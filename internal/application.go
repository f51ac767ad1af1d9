package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/gameroom-backend/internal/config"
	"github.com/rocketscienceinc/gameroom-backend/internal/repository"
	"github.com/rocketscienceinc/gameroom-backend/internal/repository/storage"
	"github.com/rocketscienceinc/gameroom-backend/internal/usecase"
	"github.com/rocketscienceinc/gameroom-backend/transport/rest"
	"github.com/rocketscienceinc/gameroom-backend/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	sessionRepo, err := newSessionRepository(ctx, logger, conf)
	if err != nil {
		return fmt.Errorf("could not create session repository: %w", err)
	}

	manager := usecase.NewSessionManager(logger, sessionRepo, usecase.WithCodeLength(conf.Game.CodeLength))

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, rest.NewHandlers(logger, manager))
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			httpErrCh <- httpErr
		}
	}()

	// run WebSocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, manager)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func newSessionRepository(ctx context.Context, logger *slog.Logger, conf *config.Config) (repository.SessionRepository, error) {
	switch conf.Storage {
	case config.StorageRedis:
		client, err := storage.NewRedisClient(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		logger.Info("using redis session storage", "addr", conf.Redis.GetRedisAddr())

		return repository.NewRedisSessionRepository(client), nil
	case config.StorageMemory:
		return repository.NewMemorySessionRepository(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", conf.Storage)
	}
}
