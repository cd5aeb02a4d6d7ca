package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
)

type healthResponse struct {
	Status      string `json:"status"`
	Rooms       int    `json:"rooms"`
	Connections int    `json:"connections"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (that *Server) healthHandler(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	that.writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Rooms:       that.games.Rooms(),
		Connections: that.connections.Sessions(),
	})
}

// gameHandler - returns the current snapshot of a live room.
func (that *Server) gameHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	game, err := that.games.Game(r.Context(), ps.ByName("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apperror.ErrNotFound) {
			status = http.StatusNotFound
		} else {
			that.logger.Error("failed to get game", "gameID", ps.ByName("id"), "error", err)
		}

		that.writeJSON(w, status, errorResponse{Error: apperror.Reason(err), Code: apperror.Code(err)})
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
