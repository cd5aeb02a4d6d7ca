package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type gameReader interface {
	Game(ctx context.Context, gameID string) (*entity.Game, error)
	Rooms() int
}

type connectionCounter interface {
	Sessions() int
}

type Server struct {
	logger      *slog.Logger
	games       gameReader
	connections connectionCounter
	router      *httprouter.Router
}

func New(logger *slog.Logger, games gameReader, connections connectionCounter) *Server {
	server := &Server{
		logger:      logger.With("component", "rest"),
		games:       games,
		connections: connections,
		router:      httprouter.New(),
	}

	server.router.GET("/ping", pingHandler)
	server.router.GET("/healthz", server.healthHandler)
	server.router.GET("/games/:id", server.gameHandler)

	return server
}

func (that *Server) Handler() http.Handler {
	return that.router
}

// Start - serves HTTP until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
