package websocket

import (
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/usecase"
)

// Publish - turns a room event into messages for each connection of the room. It runs under the
// room lock, so it only encodes and enqueues.
func (that *Server) Publish(event usecase.Event) {
	log := that.logger.With("method", "Publish", "gameID", event.Game.ID, "event", event.Type)

	update, err := encode(eventGameUpdate, event.Game)
	if err != nil {
		log.Error("failed to encode game update", "error", err)
		return
	}

	for _, player := range event.Game.Players {
		s := that.session(player.ConnID)
		if s == nil {
			log.Debug("connection not found for player", "playerID", player.ID)
			continue
		}

		if player.ConnID != event.ConnID {
			that.deliver(s, update)
			continue
		}

		switch event.Type {
		case usecase.EventCreated:
			s.bind(event.Game.ID)
			that.reply(s, eventGameCreated, SeatPayload{Game: event.Game, Symbol: player.Mark})
		case usecase.EventJoined, usecase.EventRejoined:
			s.bind(event.Game.ID)
			that.reply(s, eventGameJoined, SeatPayload{Game: event.Game, Symbol: player.Mark})
		default:
			that.deliver(s, update)
		}
	}

	// the leaver is no longer listed among the players
	if event.Type == usecase.EventLeft {
		that.evict(event.ConnID, event.Game.ID)
	}

	if event.StaleConnID != "" {
		log.Info("evicting stale connection", "connID", event.StaleConnID)
		that.evict(event.StaleConnID, event.Game.ID)
	}
}

// evict - tells a connection it no longer holds a seat in the room.
func (that *Server) evict(connID, gameID string) {
	s := that.session(connID)
	if s == nil {
		return
	}

	s.unbind(gameID)
	that.reply(s, eventGameLeft, LeftPayload{GameID: gameID})
}
