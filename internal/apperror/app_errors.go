package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("game not found")
	ErrRoomFull       = errors.New("game is already full")
	ErrNotInRoom      = errors.New("not currently in a game")
	ErrNotYourTurn    = errors.New("it's not your turn")
	ErrWrongBoard     = errors.New("move is outside the forced sub-board")
	ErrCellOccupied   = errors.New("cell is already occupied")
	ErrGameNotActive  = errors.New("game is not active")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrInvalidState   = errors.New("invalid state transition")
	ErrForbidden      = errors.New("not allowed")
)

const CodeInternal = "INTERNAL"

var codes = []struct {
	err  error
	code string
}{
	{ErrNotFound, "NOT_FOUND"},
	{ErrRoomFull, "ROOM_FULL"},
	{ErrNotInRoom, "NOT_IN_ROOM"},
	{ErrNotYourTurn, "NOT_YOUR_TURN"},
	{ErrWrongBoard, "WRONG_BOARD"},
	{ErrCellOccupied, "CELL_OCCUPIED"},
	{ErrGameNotActive, "GAME_NOT_ACTIVE"},
	{ErrInvalidPayload, "INVALID_PAYLOAD"},
	{ErrInvalidState, "INVALID_STATE"},
	{ErrForbidden, "FORBIDDEN"},
}

// Code - returns the stable wire code of the first known error kind found in err's chain.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}

	return CodeInternal
}

// Error - an error kind together with a reason that can be shown to players as is.
type Error struct {
	Kind   error
	Reason string
}

func Newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

func (that *Error) Error() string {
	return that.Kind.Error() + ": " + that.Reason
}

func (that *Error) Unwrap() error {
	return that.Kind
}

// Reason - returns the player facing text of err. Unknown errors are not exposed.
func Reason(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Reason
	}

	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.err.Error()
		}
	}

	return "internal error"
}
