package model

import (
	"errors"
	"fmt"
)

// Reasons a move request can be refused. All of them are recoverable: the
// side to move simply tries again.
var (
	ErrOutOfBounds  = errors.New("square is off the board")
	ErrEmptySource  = errors.New("no piece on the source square")
	ErrWrongOwner   = errors.New("piece belongs to the other side")
	ErrIllegalShape = errors.New("piece cannot move that way")
	ErrBadSquare    = errors.New("bad square")
	ErrGameOver     = errors.New("game is over")
	ErrNoMoves      = errors.New("no moves available")
	ErrNotAutoSide  = errors.New("side is not played automatically")
	ErrAutoSideTurn = errors.New("automatic side is to move")
)

// MoveError ties a refusal reason to the squares that were requested.
type MoveError struct {
	Err  error
	From Position
	To   Position
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %s-%s: %v", e.From, e.To, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

func moveError(err error, from, to Position) error {
	return &MoveError{Err: err, From: from, To: to}
}
