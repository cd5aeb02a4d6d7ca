package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2024, time.March, 1, 12, 30, 0, 0, time.UTC)

func TestNewGame(t *testing.T) {
	// When: a player creates a game
	game := NewGame("ABC1234", &Player{ID: "u1", ConnID: "c1"}, createdAt)

	// Then: the creator is seated as X and the game waits for an opponent
	expectedGame := &Game{
		ID:        "ABC1234",
		Players:   []*Player{{ID: "u1", Mark: PlayerX, ConnID: "c1"}},
		Turn:      PlayerX,
		Status:    StatusWaiting,
		CreatedAt: createdAt,
	}

	require.Equal(t, expectedGame, game)
}

func TestGame_ConfirmPlaying(t *testing.T) {
	t.Run("Returns nil when game is playing", func(t *testing.T) {
		// Given: a game with StatusPlaying
		game := &Game{Status: StatusPlaying}

		// Then: moves are accepted
		assert.NoError(t, game.ConfirmPlaying())
	})

	t.Run("Returns ErrGameNotActive when game is waiting or finished", func(t *testing.T) {
		for _, status := range []string{StatusWaiting, StatusFinished} {
			// Given: a game that is not playing
			game := &Game{Status: status}

			// Then: ErrGameNotActive is returned
			assert.ErrorIs(t, game.ConfirmPlaying(), apperror.ErrGameNotActive, status)
		}
	})

	t.Run("Returns ErrInvalidState for unknown status", func(t *testing.T) {
		game := &Game{Status: "unknown"}

		err := game.ConfirmPlaying()

		require.ErrorIs(t, err, apperror.ErrInvalidState)
		assert.Contains(t, err.Error(), "unknown game status")
	})
}

func TestGame_Seat(t *testing.T) {
	t.Run("Second player gets O and the game starts", func(t *testing.T) {
		// Given: a waiting game
		game := NewGame("ABC1234", &Player{ID: "u1"}, createdAt)

		// When: a second player takes a seat
		err := game.Seat(&Player{ID: "u2"})
		require.NoError(t, err)

		// Then: the newcomer plays O and the game is playing
		assert.Equal(t, PlayerO, game.PlayerByID("u2").Mark)
		assert.Equal(t, StatusPlaying, game.Status)
	})

	t.Run("Newcomer gets X when only O remains", func(t *testing.T) {
		// Given: a game where X left and O stayed
		game := &Game{Players: []*Player{{ID: "u2", Mark: PlayerO}}, Status: StatusWaiting}

		// When: a new player takes a seat
		require.NoError(t, game.Seat(&Player{ID: "u3"}))

		// Then: the free symbol X is assigned
		assert.Equal(t, PlayerX, game.PlayerByID("u3").Mark)
		assert.Equal(t, StatusPlaying, game.Status)
	})

	t.Run("Full game rejects a third player", func(t *testing.T) {
		// Given: a full game
		game := NewGame("ABC1234", &Player{ID: "u1"}, createdAt)
		require.NoError(t, game.Seat(&Player{ID: "u2"}))

		// When: a third player tries to sit
		err := game.Seat(&Player{ID: "u3"})

		// Then: ErrRoomFull is returned and the roster is unchanged
		require.ErrorIs(t, err, apperror.ErrRoomFull)
		assert.Len(t, game.Players, 2)
	})
}

func TestGame_Unseat(t *testing.T) {
	// Given: a finished game with two players
	game := NewGame("ABC1234", &Player{ID: "u1"}, createdAt)
	require.NoError(t, game.Seat(&Player{ID: "u2"}))
	require.NoError(t, game.Board.SetCell(0, 0, PlayerX))
	game.Status = StatusFinished
	game.Winner = PlayerX

	// When: one player leaves
	removed := game.Unseat("u1")

	// Then: the game waits again, the winner is cleared, the board is retained
	assert.True(t, removed)
	assert.Equal(t, StatusWaiting, game.Status)
	assert.Empty(t, game.Winner)
	assert.Equal(t, PlayerX, game.Board.CellAt(0, 0))
	assert.Nil(t, game.PlayerByID("u1"))

	// And: removing an unknown player is reported
	assert.False(t, game.Unseat("nobody"))
}

func TestGame_Reset(t *testing.T) {
	t.Run("Keeps counters and restarts play with two seats", func(t *testing.T) {
		// Given: a finished game with some score
		forced := 3
		game := NewGame("ABC1234", &Player{ID: "u1"}, createdAt)
		require.NoError(t, game.Seat(&Player{ID: "u2"}))
		require.NoError(t, game.Board.SetCell(3, 3, PlayerO))
		game.Board.SetSubOutcome(3, PlayerO)
		game.ForcedBoard = &forced
		game.Status = StatusFinished
		game.Winner = PlayerO
		game.Turn = PlayerO
		game.OWins = 2
		game.XWins = 1

		// When: the game is reset
		game.Reset()

		// Then: board, forced board and winner are cleared, counters persist
		assert.Equal(t, Board{}, game.Board)
		assert.Nil(t, game.ForcedBoard)
		assert.Empty(t, game.Winner)
		assert.Equal(t, PlayerX, game.Turn)
		assert.Equal(t, StatusPlaying, game.Status)
		assert.Equal(t, 1, game.XWins)
		assert.Equal(t, 2, game.OWins)
	})

	t.Run("Waits with a single seat", func(t *testing.T) {
		game := NewGame("ABC1234", &Player{ID: "u1"}, createdAt)
		game.Status = StatusFinished

		game.Reset()

		assert.Equal(t, StatusWaiting, game.Status)
	})
}

func TestGame_Clone(t *testing.T) {
	// Given: a game with players and a forced board
	forced := 4
	game := NewGame("ABC1234", &Player{ID: "u1", ConnID: "c1"}, createdAt)
	game.ForcedBoard = &forced

	// When: the clone is mutated
	clone := game.Clone()
	clone.Players[0].ConnID = "c2"
	*clone.ForcedBoard = 5
	require.NoError(t, clone.Board.SetCell(0, 0, PlayerX))

	// Then: the original is untouched
	assert.Equal(t, "c1", game.Players[0].ConnID)
	assert.Equal(t, 4, *game.ForcedBoard)
	assert.Equal(t, EmptyCell, game.Board.CellAt(0, 0))
}

func TestGame_JSONRoundTrip(t *testing.T) {
	// Given: a game in the middle of a match
	forced := 7
	game := NewGame("ABC1234", &Player{ID: "u1"}, createdAt)
	require.NoError(t, game.Seat(&Player{ID: "u2"}))
	require.NoError(t, game.Board.SetCell(0, 7, PlayerX))
	require.NoError(t, game.Board.SetCell(7, 0, PlayerO))
	game.Board.SetSubOutcome(2, PlayerTie)
	game.ForcedBoard = &forced
	game.XWins = 3
	game.OWins = 1

	// When: the snapshot is serialized and parsed back
	data, err := json.Marshal(game)
	require.NoError(t, err)

	var parsed Game
	require.NoError(t, json.Unmarshal(data, &parsed))

	// Then: the logical state is identical
	require.Equal(t, game, &parsed)
}

func TestGame_WireShape(t *testing.T) {
	// Given: a fresh game
	game := NewGame("ABC1234", &Player{ID: "u1", ConnID: "secret"}, createdAt)

	// When: it is serialized
	data, err := json.Marshal(game)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))

	// Then: the board is 9x10, the forced board and winner are empty and the connection stays private
	board, ok := wire["boardState"].([]any)
	require.True(t, ok)
	require.Len(t, board, 9)
	assert.Len(t, board[0], 10)
	assert.Nil(t, wire["nextAllowedOuterCell"])
	assert.Contains(t, wire, "winner")
	assert.Nil(t, wire["winner"])
	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, wire, "XWins")
	assert.Contains(t, wire, "OWins")
}

func TestGame_WireWinner(t *testing.T) {
	// Given: a game won by O
	game := NewGame("ABC1234", &Player{ID: "u1"}, createdAt)
	game.Status = StatusFinished
	game.Winner = PlayerO

	// When: it is serialized and parsed back
	data, err := json.Marshal(game)
	require.NoError(t, err)

	var parsed Game
	require.NoError(t, json.Unmarshal(data, &parsed))

	// Then: the winner is a plain symbol on the wire and survives the trip
	assert.Contains(t, string(data), `"winner":"O"`)
	assert.Equal(t, PlayerO, parsed.Winner)
	assert.Equal(t, StatusFinished, parsed.Status)
}

func TestToggleMark(t *testing.T) {
	assert.Equal(t, PlayerO, ToggleMark(PlayerX))
	assert.Equal(t, PlayerX, ToggleMark(PlayerO))
}
