package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/pkg"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/tictactoe"
)

const (
	EventCreated  = "created"
	EventJoined   = "joined"
	EventRejoined = "rejoined"
	EventMoved    = "moved"
	EventReset    = "reset"
	EventLeft     = "left"
)

const mirrorTimeout = 2 * time.Second

// Event - a committed change of one room. Events of a room reach the publisher in commit order.
type Event struct {
	Type   string
	Game   *entity.Game
	UserID string
	ConnID string

	// StaleConnID is set on rejoin when the seat was bound to another connection.
	StaleConnID string
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	DeleteByID(ctx context.Context, id string) error
}

type publisher interface {
	Publish(event Event)
}

type JoinResult struct {
	Game   *entity.Game
	Symbol string
}

type LeaveResult struct {
	// Game is nil when the room was destroyed.
	Game      *entity.Game
	Player    *entity.Player
	Destroyed bool
}

type room struct {
	mu     sync.Mutex
	game   *entity.Game
	closed bool
}

// GameManager - owns every live room. Operations on one room are serialized by the room lock,
// different rooms never wait for each other.
type GameManager struct {
	logger    *slog.Logger
	gameRepo  gameRepo
	publisher publisher
	now       func() time.Time

	// mirrorTimeout bounds each snapshot write, which runs under the room lock.
	mirrorTimeout time.Duration

	// mu guards the rooms map only and is never held while waiting for a room lock.
	mu    sync.RWMutex
	rooms map[string]*room
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger:        logger.With("component", "game_manager"),
		gameRepo:      gameRepo,
		publisher:     nopPublisher{},
		now:           time.Now,
		mirrorTimeout: mirrorTimeout,
		rooms:         make(map[string]*room),
	}
}

// SetPublisher - sets the receiver of room events. Must be called before serving traffic.
func (that *GameManager) SetPublisher(publisher publisher) {
	that.publisher = publisher
}

// CreateRoom - creates a waiting room with the user seated as X.
func (that *GameManager) CreateRoom(ctx context.Context, userID, connID string) (*entity.Game, error) {
	r := &room{}
	r.mu.Lock()
	defer r.mu.Unlock()

	that.mu.Lock()
	gameID, err := that.newGameID()
	if err != nil {
		that.mu.Unlock()
		return nil, fmt.Errorf("failed to generate game id: %w", err)
	}

	r.game = entity.NewGame(gameID, &entity.Player{ID: userID, ConnID: connID}, that.now().UTC())
	that.rooms[gameID] = r
	that.mu.Unlock()

	that.logger.Info("game created", "gameID", gameID, "playerID", userID)

	return that.commit(ctx, r, Event{Type: EventCreated, UserID: userID, ConnID: connID}), nil
}

// JoinRoom - seats the user in the room, or reattaches the user to the seat already held.
func (that *GameManager) JoinRoom(ctx context.Context, gameID, userID, connID string) (*JoinResult, error) {
	r, err := that.lockRoom(gameID)
	if err != nil {
		return nil, err
	}
	defer r.mu.Unlock()

	log := that.logger.With("method", "JoinRoom", "gameID", r.game.ID, "playerID", userID)

	if player := r.game.PlayerByID(userID); player != nil {
		event := Event{Type: EventRejoined, UserID: userID, ConnID: connID}
		if player.ConnID != connID {
			event.StaleConnID = player.ConnID
		}
		player.ConnID = connID

		log.Info("player rejoined game", "symbol", player.Mark)

		return &JoinResult{Game: that.commit(ctx, r, event), Symbol: player.Mark}, nil
	}

	player := &entity.Player{ID: userID, ConnID: connID}
	if err = r.game.Seat(player); err != nil {
		return nil, fmt.Errorf("failed to join game: %w", err)
	}

	// a board decided in an abandoned match is never resumed, the newcomer starts a fresh one
	if r.game.IsPlaying() && tictactoe.EvaluateOverall(&r.game.Board) != entity.Undecided {
		r.game.Reset()
		log.Info("decided board cleared for new match")
	}

	log.Info("player joined game", "symbol", player.Mark)

	game := that.commit(ctx, r, Event{Type: EventJoined, UserID: userID, ConnID: connID})

	return &JoinResult{Game: game, Symbol: player.Mark}, nil
}

// ApplyMove - plays the user's symbol into cell inner of sub-board outer.
func (that *GameManager) ApplyMove(ctx context.Context, gameID, userID string, outer, inner int) (*entity.Game, error) {
	r, err := that.lockRoom(gameID)
	if err != nil {
		return nil, err
	}
	defer r.mu.Unlock()

	player := r.game.PlayerByID(userID)
	if player == nil {
		return nil, fmt.Errorf("%w: player %s in game %s", apperror.ErrNotInRoom, userID, r.game.ID)
	}

	if err = tictactoe.MakeTurn(r.game, player.Mark, outer, inner); err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	log := that.logger.With("method", "ApplyMove", "gameID", r.game.ID)

	if r.game.IsPlaying() {
		if derived := tictactoe.NextTurn(&r.game.Board); derived != r.game.Turn {
			log.Warn("turn differs from mark count", "turn", r.game.Turn, "derived", derived)
		}
	}

	log.Debug("move made", "symbol", player.Mark, "outer", outer, "inner", inner)

	if r.game.IsFinished() {
		log.Info("game finished", "winner", r.game.Winner, "XWins", r.game.XWins, "OWins", r.game.OWins)
	}

	return that.commit(ctx, r, Event{Type: EventMoved, UserID: userID, ConnID: player.ConnID}), nil
}

// ResetRoom - starts a new match in the room. Only a seated user may reset.
func (that *GameManager) ResetRoom(ctx context.Context, gameID, userID string) (*entity.Game, error) {
	r, err := that.lockRoom(gameID)
	if err != nil {
		return nil, err
	}
	defer r.mu.Unlock()

	player := r.game.PlayerByID(userID)
	if player == nil {
		return nil, fmt.Errorf("%w: player %s in game %s", apperror.ErrNotInRoom, userID, r.game.ID)
	}

	r.game.Reset()

	that.logger.Info("game reset", "gameID", r.game.ID, "playerID", userID, "status", r.game.Status)

	return that.commit(ctx, r, Event{Type: EventReset, UserID: userID, ConnID: player.ConnID}), nil
}

// RemoveParticipant - frees the user's seat. The last one out destroys the room.
func (that *GameManager) RemoveParticipant(ctx context.Context, gameID, userID string) (*LeaveResult, error) {
	r, err := that.lockRoom(gameID)
	if err != nil {
		return nil, err
	}
	defer r.mu.Unlock()

	player := r.game.PlayerByID(userID)
	if player == nil {
		return nil, fmt.Errorf("%w: player %s in game %s", apperror.ErrNotInRoom, userID, r.game.ID)
	}

	return that.remove(ctx, r, player), nil
}

// RemoveConnection - frees the seat bound to connID. Used when a connection drops, since the
// user handle may already be bound to a newer connection.
func (that *GameManager) RemoveConnection(ctx context.Context, gameID, connID string) (*LeaveResult, error) {
	r, err := that.lockRoom(gameID)
	if err != nil {
		return nil, err
	}
	defer r.mu.Unlock()

	player := r.game.PlayerByConn(connID)
	if player == nil {
		return nil, fmt.Errorf("%w: connection %s in game %s", apperror.ErrNotInRoom, connID, r.game.ID)
	}

	return that.remove(ctx, r, player), nil
}

// Game - returns a copy of the room's current state.
func (that *GameManager) Game(_ context.Context, gameID string) (*entity.Game, error) {
	r, err := that.lockRoom(gameID)
	if err != nil {
		return nil, err
	}
	defer r.mu.Unlock()

	return r.game.Clone(), nil
}

// Rooms - returns the number of live rooms.
func (that *GameManager) Rooms() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}

func (that *GameManager) remove(ctx context.Context, r *room, player *entity.Player) *LeaveResult {
	gameID := r.game.ID
	leaver := *player

	r.game.Unseat(player.ID)

	log := that.logger.With("method", "remove", "gameID", gameID, "playerID", leaver.ID)

	if len(r.game.Players) > 0 {
		log.Info("player left game, waiting for opponent")

		game := that.commit(ctx, r, Event{Type: EventLeft, UserID: leaver.ID, ConnID: leaver.ConnID})

		return &LeaveResult{Game: game, Player: &leaver}
	}

	r.closed = true

	that.mu.Lock()
	delete(that.rooms, gameID)
	that.mu.Unlock()

	mirrorCtx, cancel := context.WithTimeout(ctx, that.mirrorTimeout)
	defer cancel()

	if err := that.gameRepo.DeleteByID(mirrorCtx, gameID); err != nil {
		log.Error("failed to delete game snapshot", "error", err)
	}

	log.Info("game deleted as last player left")

	return &LeaveResult{Player: &leaver, Destroyed: true}
}

// commit - mirrors the room state and publishes the event. Must be called with the room locked.
func (that *GameManager) commit(ctx context.Context, r *room, event Event) *entity.Game {
	mirrorCtx, cancel := context.WithTimeout(ctx, that.mirrorTimeout)
	defer cancel()

	if err := that.gameRepo.CreateOrUpdate(mirrorCtx, r.game); err != nil {
		that.logger.Error("failed to mirror game snapshot", "gameID", r.game.ID, "error", err)
	}

	event.Game = r.game.Clone()
	that.publisher.Publish(event)

	return r.game.Clone()
}

// lockRoom - returns the room locked. The caller must unlock it.
func (that *GameManager) lockRoom(gameID string) (*room, error) {
	gameID = NormalizeGameID(gameID)

	that.mu.RLock()
	r, ok := that.rooms[gameID]
	that.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrNotFound, gameID)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrNotFound, gameID)
	}

	return r, nil
}

// newGameID - must be called with that.mu held.
func (that *GameManager) newGameID() (string, error) {
	for {
		gameID, err := pkg.GenerateGameID()
		if err != nil {
			return "", err
		}

		if _, exists := that.rooms[gameID]; !exists {
			return gameID, nil
		}
	}
}

// NormalizeGameID - room codes are typed by people, so they are matched case-insensitively.
func NormalizeGameID(gameID string) string {
	return strings.ToUpper(strings.TrimSpace(gameID))
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}
