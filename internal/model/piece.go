package model

import "unicode"

type PieceType string

const (
	Empty  PieceType = ""
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

func (p PieceType) getPieceNotation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

// Piece is the content of one board cell. The zero value is the Empty piece.
type Piece struct {
	Type  PieceType   `json:"type"`
	Color PlayerColor `json:"color,omitempty"`
}

var EmptyPiece = Piece{}

func NewPiece(color PlayerColor, t PieceType) Piece {
	return Piece{Type: t, Color: color}
}

func (p Piece) IsEmpty() bool {
	return p.Type == Empty
}

// Symbol returns the display letter: upper case for White, lower case for
// Black and '.' for an empty cell.
func (p Piece) Symbol() rune {
	if p.IsEmpty() {
		return '.'
	}
	letter := 'P'
	if p.Type != Pawn {
		letter = rune(p.Type.getPieceNotation()[0])
	}
	if p.Color == PlayerColorBlack {
		return unicode.ToLower(letter)
	}
	return letter
}

// IsMoveValid reports whether the piece standing on from may go to to on
// board b. Only the shape of the move and the occupancy of the destination
// are considered; squares in between are not inspected except for the
// pawn's double step.
func (p Piece) IsMoveValid(from, to Position, b *Board) bool {
	if p.IsEmpty() || !from.IsValid() || !to.IsValid() {
		return false
	}
	dest := b.Piece(to)
	if !dest.IsEmpty() && dest.Color == p.Color {
		return false
	}

	dr, dc := to.Row-from.Row, to.Col-from.Col
	switch p.Type {
	case King:
		return abs(dr) <= 1 && abs(dc) <= 1 && (dr != 0 || dc != 0)
	case Queen:
		return isDiagonal(dr, dc) || isOrthogonal(dr, dc)
	case Rook:
		return isOrthogonal(dr, dc)
	case Bishop:
		return isDiagonal(dr, dc)
	case Knight:
		return (abs(dr) == 2 && abs(dc) == 1) || (abs(dr) == 1 && abs(dc) == 2)
	case Pawn:
		return p.isPawnMoveValid(from, dr, dc, dest, b)
	}
	return false
}

func (p Piece) isPawnMoveValid(from Position, dr, dc int, dest Piece, b *Board) bool {
	dir, home := -1, 6
	if p.Color == PlayerColorBlack {
		dir, home = 1, 1
	}
	if dc == 0 {
		if !dest.IsEmpty() {
			return false
		}
		if dr == dir {
			return true
		}
		between := Position{Row: from.Row + dir, Col: from.Col}
		return dr == 2*dir && from.Row == home && b.Piece(between).IsEmpty()
	}
	// dest is already known not to hold a piece of our color
	return abs(dc) == 1 && dr == dir && !dest.IsEmpty()
}

func isDiagonal(dr, dc int) bool {
	return abs(dr) == abs(dc)
}

func isOrthogonal(dr, dc int) bool {
	return dr == 0 || dc == 0
}

// promotionRow is the far rank for a pawn of the given color.
func promotionRow(c PlayerColor) int {
	if c == PlayerColorWhite {
		return 0
	}
	return 7
}
