package tictactoe

import "github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"

// EvaluateSubBoard - computes the outcome of one sub-board from its cells.
func EvaluateSubBoard(board *entity.Board, sub int) string {
	cells := board.Cells(sub)

	if winner := checkTriples(cells); winner != "" {
		return winner
	}

	for _, cell := range cells {
		if cell == entity.EmptyCell {
			return entity.Undecided
		}
	}

	return entity.PlayerTie
}

// EvaluateOverall - computes the outcome of the outer board from the sub-board outcomes.
// Drawn sub-boards block a line for both players.
func EvaluateOverall(board *entity.Board) string {
	outcomes := board.Outcomes()

	if winner := checkTriples(outcomes); winner != "" {
		return winner
	}

	for _, outcome := range outcomes {
		if outcome == entity.Undecided {
			return entity.Undecided
		}
	}

	return entity.PlayerTie
}

// NextForcedSubboard - the opponent must answer in the sub-board matching the cell just played,
// unless that sub-board is already decided.
func NextForcedSubboard(inner int, board *entity.Board) *int {
	if board.IsSubDecided(inner) {
		return nil
	}

	return &inner
}

// NextTurn - derives whose turn it is from the mark counts.
func NextTurn(board *entity.Board) string {
	var xCount, oCount int

	for sub := range entity.BoardSize {
		for _, cell := range board.Cells(sub) {
			switch cell {
			case entity.PlayerX:
				xCount++
			case entity.PlayerO:
				oCount++
			}
		}
	}

	if xCount == oCount {
		return entity.PlayerX
	}

	return entity.PlayerO
}

func checkTriples(line [entity.BoardSize]string) string {
	for _, combo := range entity.WinCombos {
		a, b, c := line[combo[0]], line[combo[1]], line[combo[2]]
		if (a == entity.PlayerX || a == entity.PlayerO) && a == b && b == c {
			return a
		}
	}

	return ""
}
