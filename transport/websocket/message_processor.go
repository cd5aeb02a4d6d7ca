package websocket

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

// intents, client to server
const (
	actionConnect    = "connect"
	actionCreateRoom = "createRoom"
	actionJoinRoom   = "joinRoom"
	actionMakeMove   = "makeMove"
	actionResetGame  = "resetGame"
	actionLeaveGame  = "leaveGame"
)

// events, server to client
const (
	eventYourID      = "yourId"
	eventResumeToken = "resumeToken"
	eventGameCreated = "gameCreated"
	eventGameJoined  = "gameJoined"
	eventGameUpdate  = "gameUpdate"
	eventGameError   = "gameError"
	eventGameLeft    = "gameLeft"
)

// Message - the envelope of every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type connectPayload struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

type joinPayload struct {
	GameID string `json:"gameId"`
}

type movePayload struct {
	OuterIndex *int `json:"outerIndex"`
	InnerIndex *int `json:"innerIndex"`
}

type SeatPayload struct {
	Game   *entity.Game `json:"game"`
	Symbol string       `json:"symbol"`
}

type ErrorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type LeftPayload struct {
	GameID string `json:"gameId"`
}

func encode(action string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", action, err)
	}

	msg, err := json.Marshal(Message{Action: action, Payload: body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s message: %w", action, err)
	}

	return msg, nil
}

// parseGameID - accepts both "ABC1234" and {"gameId": "ABC1234"}.
func parseGameID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)

	var gameID string
	if err := json.Unmarshal(raw, &gameID); err != nil {
		var payload joinPayload
		if err = json.Unmarshal(raw, &payload); err != nil {
			return "", apperror.Newf(apperror.ErrInvalidPayload, "Game id is required.")
		}
		gameID = payload.GameID
	}

	if gameID == "" {
		return "", apperror.Newf(apperror.ErrInvalidPayload, "Game id is required.")
	}

	return gameID, nil
}

// parseMove - both indices must be present. Range checks are left to the rules.
func parseMove(raw json.RawMessage) (int, int, error) {
	var payload movePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, 0, apperror.Newf(apperror.ErrInvalidPayload, "Move must carry outerIndex and innerIndex.")
	}

	if payload.OuterIndex == nil || payload.InnerIndex == nil {
		return 0, 0, apperror.Newf(apperror.ErrInvalidPayload, "Move must carry outerIndex and innerIndex.")
	}

	return *payload.OuterIndex, *payload.InnerIndex, nil
}

// parseConnect - a bare string names a handle without a token.
func parseConnect(raw json.RawMessage) (connectPayload, error) {
	var payload connectPayload

	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return payload, nil
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		if err = json.Unmarshal(raw, &payload.UserID); err != nil {
			return payload, apperror.Newf(apperror.ErrInvalidPayload, "Malformed connect payload.")
		}
	}

	return payload, nil
}
