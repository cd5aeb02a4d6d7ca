package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

const gameKeyPrefix = "game:"

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	DeleteByID(ctx context.Context, id string) error
}

// dbGame - mirrors live games into Redis so they can be inspected from outside the process.
// Snapshots are never read back on start.
type dbGame struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameRepository - ttl bounds how long a snapshot of an abandoned process survives, zero keeps it forever.
func NewGameRepository(client *redis.Client, ttl time.Duration) GameRepository {
	return &dbGame{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	if err = that.client.Set(ctx, gameKey(game.ID), gameJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	if err := that.client.Del(ctx, gameKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete game by id: %w", err)
	}

	return nil
}

func gameKey(id string) string {
	return gameKeyPrefix + id
}

// nopGame - used when no Redis is configured.
type nopGame struct{}

func NewNopGameRepository() GameRepository {
	return nopGame{}
}

func (nopGame) CreateOrUpdate(context.Context, *entity.Game) error { return nil }

func (nopGame) DeleteByID(context.Context, string) error { return nil }
