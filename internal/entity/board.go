package entity

import (
	"fmt"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
)

const (
	// BoardSize - number of sub-boards on the outer board and of cells on a sub-board.
	BoardSize = 9

	// OutcomeSlot - index of the outcome slot inside a sub-board row.
	OutcomeSlot = 9
)

// Board - 9 sub-boards, each holding 9 cells followed by the sub-board outcome.
type Board [BoardSize][BoardSize + 1]string

// ValidIndex - reports whether i addresses a sub-board or a cell.
func ValidIndex(i int) bool {
	return i >= 0 && i < BoardSize
}

func (that *Board) CellAt(sub, cell int) string {
	return that[sub][cell]
}

// SetCell - writes mark to an empty cell. An occupied cell is never overwritten.
func (that *Board) SetCell(sub, cell int, mark string) error {
	if !ValidIndex(sub) || !ValidIndex(cell) {
		return fmt.Errorf("%w: cell %d/%d", apperror.ErrInvalidPayload, sub, cell)
	}

	if that[sub][cell] != EmptyCell {
		return fmt.Errorf("%w: cell %d/%d holds %s", apperror.ErrInvalidState, sub, cell, that[sub][cell])
	}

	that[sub][cell] = mark

	return nil
}

func (that *Board) SubOutcome(sub int) string {
	return that[sub][OutcomeSlot]
}

// SetSubOutcome - stores the outcome of a sub-board. Once decided it stays as it is.
func (that *Board) SetSubOutcome(sub int, outcome string) {
	if that.IsSubDecided(sub) {
		return
	}

	that[sub][OutcomeSlot] = outcome
}

func (that *Board) IsSubDecided(sub int) bool {
	return that[sub][OutcomeSlot] != Undecided
}

// Cells - returns the 9 cells of a sub-board.
func (that *Board) Cells(sub int) [BoardSize]string {
	var cells [BoardSize]string
	copy(cells[:], that[sub][:OutcomeSlot])

	return cells
}

// Outcomes - returns the outcomes of all sub-boards, i.e. the outer board.
func (that *Board) Outcomes() [BoardSize]string {
	var outcomes [BoardSize]string
	for i := range that {
		outcomes[i] = that[i][OutcomeSlot]
	}

	return outcomes
}

func (that *Board) Reset() {
	*that = Board{}
}
