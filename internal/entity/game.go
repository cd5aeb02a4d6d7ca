package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
)

const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"

	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "D"

	EmptyCell = ""
	Undecided = ""

	MaxPlayers = 2
)

// WinCombos - the 8 aligned triples of a 3x3 grid.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type Game struct {
	ID          string    `json:"id"`
	Players     []*Player `json:"players"`
	Board       Board     `json:"boardState"`
	Turn        string    `json:"currentPlayer"`
	ForcedBoard *int      `json:"nextAllowedOuterCell"`
	Status      string    `json:"status"`
	Winner      string    `json:"winner"`
	XWins       int       `json:"XWins"`
	OWins       int       `json:"OWins"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewGame - creates a waiting game with the creator seated as X.
func NewGame(id string, creator *Player, createdAt time.Time) *Game {
	creator.Mark = PlayerX

	return &Game{
		ID:        id,
		Players:   []*Player{creator},
		Turn:      PlayerX,
		Status:    StatusWaiting,
		CreatedAt: createdAt,
	}
}

func (that *Game) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

// ConfirmPlaying - returns ErrGameNotActive unless moves are currently accepted.
func (that *Game) ConfirmPlaying() error {
	switch that.Status {
	case StatusPlaying:
		return nil
	case StatusWaiting, StatusFinished:
		return fmt.Errorf("%w: game is %s", apperror.ErrGameNotActive, that.Status)
	default:
		return fmt.Errorf("%w: unknown game status %q", apperror.ErrInvalidState, that.Status)
	}
}

func (that *Game) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

func (that *Game) PlayerByConn(connID string) *Player {
	for _, player := range that.Players {
		if player.ConnID == connID {
			return player
		}
	}

	return nil
}

// Seat - gives player the remaining mark and starts the game once both seats are taken.
func (that *Game) Seat(player *Player) error {
	if len(that.Players) >= MaxPlayers {
		return fmt.Errorf("%w: game id %s", apperror.ErrRoomFull, that.ID)
	}

	player.Mark = PlayerX
	if len(that.Players) == 1 && that.Players[0].Mark == PlayerX {
		player.Mark = PlayerO
	}

	that.Players = append(that.Players, player)
	if len(that.Players) == MaxPlayers {
		that.Status = StatusPlaying
	}

	return nil
}

// Unseat - removes the player and abandons the match in progress.
func (that *Game) Unseat(id string) bool {
	for i, player := range that.Players {
		if player.ID != id {
			continue
		}

		that.Players = append(that.Players[:i], that.Players[i+1:]...)
		that.Status = StatusWaiting
		that.Winner = ""

		return true
	}

	return false
}

// Reset - starts a fresh match keeping the seats and the cumulative score.
func (that *Game) Reset() {
	that.Board.Reset()
	that.ForcedBoard = nil
	that.Winner = ""
	that.Turn = PlayerX

	that.Status = StatusWaiting
	if len(that.Players) == MaxPlayers {
		that.Status = StatusPlaying
	}
}

// Clone - returns a deep copy that can be read without holding the room lock.
func (that *Game) Clone() *Game {
	clone := *that

	clone.Players = make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		p := *player
		clone.Players = append(clone.Players, &p)
	}

	if that.ForcedBoard != nil {
		forced := *that.ForcedBoard
		clone.ForcedBoard = &forced
	}

	return &clone
}

// MarshalJSON - a game without a winner carries "winner": null.
func (that Game) MarshalJSON() ([]byte, error) {
	type alias Game

	var winner *string
	if that.Winner != "" {
		winner = &that.Winner
	}

	return json.Marshal(struct {
		alias
		Winner *string `json:"winner"`
	}{alias: alias(that), Winner: winner})
}

func (that *Game) UnmarshalJSON(data []byte) error {
	type alias Game

	wire := struct {
		*alias
		Winner *string `json:"winner"`
	}{alias: (*alias)(that)}

	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	that.Winner = ""
	if wire.Winner != nil {
		that.Winner = *wire.Winner
	}

	return nil
}

func ToggleMark(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}

	return PlayerX
}
