package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/usecase"
)

// handleConnect - lets a client take its handle over from another live connection. The claim must
// carry the resume token issued with the handle. An empty payload just repeats the current handle.
func (that *Server) handleConnect(_ context.Context, s *session, payload json.RawMessage) error {
	claim, err := parseConnect(payload)
	if err != nil {
		return err
	}

	current, gameID := s.state()

	if claim.UserID != "" && claim.UserID != current {
		if gameID != "" {
			return apperror.Newf(apperror.ErrInvalidState, "Leave the game before switching identity.")
		}

		if claim.Token == "" || !that.issuedTo(s, claim.UserID, claim.Token) {
			that.logger.Warn("handle claim refused", "connID", s.id, "playerID", claim.UserID)
			return apperror.Newf(apperror.ErrForbidden, "Unknown player or resume token.")
		}

		s.adopt(claim.UserID, claim.Token)
		current = claim.UserID

		that.logger.Info("player identity restored", "connID", s.id, "playerID", current)
	}

	that.reply(s, eventYourID, current)

	return nil
}

func (that *Server) handleCreateRoom(ctx context.Context, s *session, _ json.RawMessage) error {
	that.leaveCurrent(ctx, s)

	userID, _ := s.state()

	if _, err := that.manager.CreateRoom(ctx, userID, s.id); err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	return nil
}

// handleJoinRoom - joining another room first gives up the seat in the current one.
func (that *Server) handleJoinRoom(ctx context.Context, s *session, payload json.RawMessage) error {
	gameID, err := parseGameID(payload)
	if err != nil {
		return err
	}

	if _, current := s.state(); current != usecase.NormalizeGameID(gameID) {
		that.leaveCurrent(ctx, s)
	}

	userID, _ := s.state()

	if _, err = that.manager.JoinRoom(ctx, gameID, userID, s.id); err != nil {
		return fmt.Errorf("game %s: %w", gameID, err)
	}

	return nil
}

func (that *Server) handleMakeMove(ctx context.Context, s *session, payload json.RawMessage) error {
	userID, gameID := s.state()
	if gameID == "" {
		return apperror.ErrNotInRoom
	}

	outer, inner, err := parseMove(payload)
	if err != nil {
		return err
	}

	if _, err = that.manager.ApplyMove(ctx, gameID, userID, outer, inner); err != nil {
		return fmt.Errorf("game %s: %w", gameID, err)
	}

	return nil
}

func (that *Server) handleResetGame(ctx context.Context, s *session, _ json.RawMessage) error {
	userID, gameID := s.state()
	if gameID == "" {
		return apperror.ErrNotInRoom
	}

	if _, err := that.manager.ResetRoom(ctx, gameID, userID); err != nil {
		return fmt.Errorf("game %s: %w", gameID, err)
	}

	return nil
}

func (that *Server) handleLeaveGame(ctx context.Context, s *session, _ json.RawMessage) error {
	userID, gameID := s.state()
	if gameID == "" {
		return apperror.ErrNotInRoom
	}

	res, err := that.manager.RemoveParticipant(ctx, gameID, userID)
	if err != nil {
		// the room or the seat is already gone, so the session is not in it either
		s.unbind(gameID)
		return fmt.Errorf("game %s: %w", gameID, err)
	}

	// a surviving room confirms through its own event
	if res.Destroyed {
		s.unbind(gameID)
		that.reply(s, eventGameLeft, LeftPayload{GameID: gameID})
	}

	return nil
}

// leaveCurrent - gives up the seat this session holds, if any. Failures mean there is nothing to leave.
func (that *Server) leaveCurrent(ctx context.Context, s *session) {
	userID, gameID := s.state()
	if gameID == "" {
		return
	}

	res, err := that.manager.RemoveParticipant(ctx, gameID, userID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) && !errors.Is(err, apperror.ErrNotInRoom) {
		that.logger.Error("failed to leave game", "gameID", gameID, "playerID", userID, "error", err)
	}

	s.unbind(gameID)

	if err == nil && res.Destroyed {
		that.reply(s, eventGameLeft, LeftPayload{GameID: gameID})
	}
}
