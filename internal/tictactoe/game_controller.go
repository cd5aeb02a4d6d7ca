package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

// MakeTurn - validates the move of mark into cell inner of sub-board outer and applies it.
// A rejected move leaves the game untouched.
func MakeTurn(game *entity.Game, mark string, outer, inner int) error {
	if err := validateMove(game, mark, outer, inner); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	if err := game.Board.SetCell(outer, inner, mark); err != nil {
		return fmt.Errorf("failed to set cell: %w", err)
	}

	game.Board.SetSubOutcome(outer, EvaluateSubBoard(&game.Board, outer))
	game.ForcedBoard = NextForcedSubboard(inner, &game.Board)

	updateGameStatus(game, mark)

	return nil
}

// validateMove - checks the move in order: indices, status, turn, forced sub-board, cell.
func validateMove(game *entity.Game, mark string, outer, inner int) error {
	if !entity.ValidIndex(outer) || !entity.ValidIndex(inner) {
		return fmt.Errorf("%w: outer %d, inner %d", apperror.ErrInvalidPayload, outer, inner)
	}

	if err := game.ConfirmPlaying(); err != nil {
		return err
	}

	if game.Turn != mark {
		return apperror.Newf(apperror.ErrNotYourTurn, "It's %s's turn.", game.Turn)
	}

	forced := game.ForcedBoard
	if forced != nil && *forced != outer && !game.Board.IsSubDecided(*forced) {
		return apperror.Newf(apperror.ErrWrongBoard, "You must play in sub-board %d.", *forced)
	}

	if game.Board.IsSubDecided(outer) {
		return apperror.Newf(apperror.ErrWrongBoard, "Sub-board %d is already decided.", outer)
	}

	if game.Board.CellAt(outer, inner) != entity.EmptyCell {
		return apperror.Newf(apperror.ErrCellOccupied, "This cell is already taken!")
	}

	return nil
}

// updateGameStatus - finishes the game when the outer board is decided, otherwise passes the turn.
func updateGameStatus(game *entity.Game, mark string) {
	switch winner := EvaluateOverall(&game.Board); winner {
	case entity.PlayerX:
		game.XWins++
		finish(game, winner)
	case entity.PlayerO:
		game.OWins++
		finish(game, winner)
	case entity.PlayerTie:
		finish(game, winner)
	default:
		game.Turn = entity.ToggleMark(mark)
	}
}

func finish(game *entity.Game, winner string) {
	game.Winner = winner
	game.Status = entity.StatusFinished
}
