package websocket

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/pkg"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

type gameManager interface {
	CreateRoom(ctx context.Context, userID, connID string) (*entity.Game, error)
	JoinRoom(ctx context.Context, gameID, userID, connID string) (*usecase.JoinResult, error)
	ApplyMove(ctx context.Context, gameID, userID string, outer, inner int) (*entity.Game, error)
	ResetRoom(ctx context.Context, gameID, userID string) (*entity.Game, error)
	RemoveParticipant(ctx context.Context, gameID, userID string) (*usecase.LeaveResult, error)
	RemoveConnection(ctx context.Context, gameID, connID string) (*usecase.LeaveResult, error)
}

type handler func(ctx context.Context, s *session, payload json.RawMessage) error

type Server struct {
	logger   *slog.Logger
	manager  gameManager
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*session

	handlers map[string]handler
}

// New - allowedOrigins restricts browser origins, empty allows any.
func New(logger *slog.Logger, manager gameManager, allowedOrigins []string) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		manager:  manager,
		sessions: make(map[string]*session),
		handlers: make(map[string]handler),
	}

	server.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return len(allowedOrigins) == 0 || origin == "" || slices.Contains(allowedOrigins, origin)
		},
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionCreateRoom] = server.handleCreateRoom
	server.handlers[actionJoinRoom] = server.handleJoinRoom
	server.handlers[actionMakeMove] = server.handleMakeMove
	server.handlers[actionResetGame] = server.handleResetGame
	server.handlers[actionLeaveGame] = server.handleLeaveGame

	return server
}

// Start - starts WebSocket server and blocks until ctx is canceled or the listener fails.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", that)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown websocket server", "error", err)
		}

		that.closeAll()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// ServeHTTP - upgrades the request and serves the connection until it drops.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "error", err, "origin", req.Header.Get("Origin"))
		return
	}

	s := newSession(conn, pkg.GenerateNewSessionID(), pkg.GenerateNewSessionID(), pkg.GenerateNewSessionID())
	log = log.With("connID", s.id)

	that.mu.Lock()
	that.sessions[s.id] = s
	that.mu.Unlock()

	log.Info("WebSocket connection established", "remote", req.RemoteAddr)

	go s.writePump(log)

	userID, token := s.credentials()
	that.reply(s, eventYourID, userID)
	that.reply(s, eventResumeToken, token)

	ctx := context.WithoutCancel(req.Context())
	s.readPump(ctx, log, that.dispatch)

	that.disconnect(ctx, s)
}

// Sessions - returns the number of open connections.
func (that *Server) Sessions() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.sessions)
}

// issuedTo - reports whether a live connection other than s holds userID together with token.
func (that *Server) issuedTo(s *session, userID, token string) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, other := range that.sessions {
		if other == s {
			continue
		}

		otherUser, otherToken := other.credentials()
		if otherUser == userID && subtle.ConstantTimeCompare([]byte(otherToken), []byte(token)) == 1 {
			return true
		}
	}

	return false
}

func (that *Server) dispatch(ctx context.Context, s *session, data []byte) {
	log := that.logger.With("method", "dispatch", "connID", s.id)

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		log.Debug("failed to unmarshal message", "error", err)
		that.replyError(s, apperror.Newf(apperror.ErrInvalidPayload, "Malformed message."))
		return
	}

	handle, ok := that.handlers[message.Action]
	if !ok {
		log.Debug("unknown action", "action", message.Action)
		that.replyError(s, apperror.Newf(apperror.ErrInvalidPayload, "unknown action %q", message.Action))
		return
	}

	if err := handle(ctx, s, message.Payload); err != nil {
		if apperror.Code(err) == apperror.CodeInternal {
			log.Error("error processing message", "action", message.Action, "error", err)
		} else {
			log.Debug("intent rejected", "action", message.Action, "error", err)
		}

		that.replyError(s, err)
	}
}

// disconnect - frees the seat held by this connection, if it still holds one.
func (that *Server) disconnect(ctx context.Context, s *session) {
	that.mu.Lock()
	delete(that.sessions, s.id)
	that.mu.Unlock()

	s.close()

	userID, gameID := s.state()
	log := that.logger.With("method", "disconnect", "connID", s.id, "playerID", userID)

	if gameID == "" {
		log.Info("WebSocket connection closed")
		return
	}

	if _, err := that.manager.RemoveConnection(ctx, gameID, s.id); err != nil {
		log.Debug("connection held no seat", "gameID", gameID, "error", err)
	}

	log.Info("WebSocket connection closed", "gameID", gameID)
}

func (that *Server) closeAll() {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, s := range that.sessions {
		s.close()
	}
}

func (that *Server) session(connID string) *session {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.sessions[connID]
}

func (that *Server) reply(s *session, action string, payload any) {
	msg, err := encode(action, payload)
	if err != nil {
		that.logger.Error("failed to encode reply", "action", action, "error", err)
		return
	}

	that.deliver(s, msg)
}

func (that *Server) replyError(s *session, err error) {
	that.reply(s, eventGameError, ErrorPayload{Error: apperror.Reason(err), Code: apperror.Code(err)})
}

// deliver - a connection that cannot keep up is dropped rather than allowed to stall a room.
func (that *Server) deliver(s *session, msg []byte) {
	if s.enqueue(msg) || s.isClosed() {
		return
	}

	that.logger.Warn("send queue full, closing connection", "connID", s.id)
	s.close()
}
