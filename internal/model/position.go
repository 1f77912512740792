package model

import (
	"fmt"
)

// Position is a square on the board. Row 0 is rank 8, column 0 is file a.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// NoPosition is returned when a lookup finds nothing.
var NoPosition = Position{Row: -1, Col: -1}

func (p Position) IsValid() bool {
	return p.Row >= 0 && p.Row < 8 && p.Col >= 0 && p.Col < 8
}

// String returns the square in algebraic form, e.g. "e2".
func (p Position) String() string {
	if !p.IsValid() {
		return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
	}
	return fmt.Sprintf("%c%d", 'a'+p.Col, 8-p.Row)
}

func (p Position) fileNotation() string {
	return fmt.Sprintf("%c", 'a'+p.Col)
}

// ParseSquare converts a two character token such as "e2" into a Position.
func ParseSquare(tok string) (Position, error) {
	if len(tok) != 2 {
		return NoPosition, fmt.Errorf("%w: %q", ErrBadSquare, tok)
	}
	pos := Position{Row: 8 - int(tok[1]-'0'), Col: int(tok[0]) - 'a'}
	if !pos.IsValid() {
		return NoPosition, fmt.Errorf("%w: %q: %w", ErrBadSquare, tok, ErrOutOfBounds)
	}
	return pos, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
