package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the stateless request/response mirror of the duplex channel.
// Both surfaces delegate to the same session manager.
type Server struct {
	logger   *slog.Logger
	handlers *Handlers
}

func New(logger *slog.Logger, handlers *Handlers) *Server {
	return &Server{
		logger:   logger,
		handlers: handlers,
	}
}

// Start runs the HTTP server until the context is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.handlers.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to shut down server: %w", err)
		}

		return nil
	}
}

// Router mounts every mirror endpoint on a chi router.
func (that *Handlers) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/ping", that.Ping)
	router.Post("/create_game", that.CreateGame)
	router.Post("/join_game", that.JoinGame)
	router.Post("/make_move", that.MakeMove)
	router.Post("/send_message", that.SendMessage)
	router.Get("/game_state/{code}", that.GameState)
	router.Get("/get_messages/{code}", that.GetMessages)

	return router
}
