package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

func TestEvaluateOverall(t *testing.T) {
	x, o, d, u := entity.PlayerX, entity.PlayerO, entity.PlayerTie, entity.Undecided

	tests := []struct {
		name     string
		outcomes [9]string
		want     string
	}{
		{name: "open sub-boards keep it undecided", outcomes: [9]string{x, x, u, o, o, u, u, u, u}, want: u},
		{name: "aligned X sub-boards win", outcomes: [9]string{x, x, x, o, o, u, u, u, u}, want: x},
		{name: "aligned O diagonal wins", outcomes: [9]string{o, x, x, u, o, u, x, u, o}, want: o},
		{name: "draws never form a line", outcomes: [9]string{d, d, d, x, o, x, o, x, o}, want: d},
		{name: "three draws with open sub-boards", outcomes: [9]string{d, d, d, u, u, u, u, u, u}, want: u},
		{name: "all decided without a line", outcomes: [9]string{x, o, x, x, o, o, o, x, x}, want: d},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a board with the listed sub-board outcomes
			var board entity.Board
			for sub, outcome := range tt.outcomes {
				if outcome != u {
					board.SetSubOutcome(sub, outcome)
				}
			}

			// Then: the overall outcome matches
			assert.Equal(t, tt.want, EvaluateOverall(&board))
		})
	}
}
