package model

import "fmt"

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Board is an 8x8 grid of pieces. Every cell always holds a Piece; vacant
// cells hold EmptyPiece. Boards are plain values so copying one copies all
// of its cells.
type Board struct {
	squares [8][8]Piece
}

// BoardState is the client view of a board.
type BoardState struct {
	Rows              []string `json:"rows"`
	WhiteKingPosition Position `json:"whiteKingPosition"`
	BlackKingPosition Position `json:"blackKingPosition"`
}

func NewBoard() *Board {
	b := &Board{}
	b.Setup()
	return b
}

// Setup overwrites the board with the standard starting position.
func (b *Board) Setup() {
	b.Clear()
	for col, t := range backRank {
		b.squares[0][col] = NewPiece(PlayerColorBlack, t)
		b.squares[1][col] = NewPiece(PlayerColorBlack, Pawn)
		b.squares[6][col] = NewPiece(PlayerColorWhite, Pawn)
		b.squares[7][col] = NewPiece(PlayerColorWhite, t)
	}
}

// Clear empties every cell.
func (b *Board) Clear() {
	b.squares = [8][8]Piece{}
}

// Piece returns the piece at pos. pos must be valid.
func (b *Board) Piece(pos Position) Piece {
	if !pos.IsValid() {
		panic(fmt.Sprintf("model: board lookup at invalid position %v", pos))
	}
	return b.squares[pos.Row][pos.Col]
}

// Place puts piece on pos, replacing whatever was there. pos must be valid.
func (b *Board) Place(pos Position, piece Piece) {
	if !pos.IsValid() {
		panic(fmt.Sprintf("model: board placement at invalid position %v", pos))
	}
	b.squares[pos.Row][pos.Col] = piece
}

// Move relocates the piece on from to to if the piece accepts the move.
// A pawn reaching the far rank becomes a queen. The board is left untouched
// when the move is refused.
func (b *Board) Move(from, to Position) error {
	if !from.IsValid() || !to.IsValid() {
		return ErrOutOfBounds
	}
	piece := b.Piece(from)
	if piece.IsEmpty() {
		return ErrEmptySource
	}
	if !piece.IsMoveValid(from, to, b) {
		return ErrIllegalShape
	}
	if piece.Type == Pawn && to.Row == promotionRow(piece.Color) {
		piece.Type = Queen
	}
	b.squares[to.Row][to.Col] = piece
	b.squares[from.Row][from.Col] = EmptyPiece
	return nil
}

// FindKing returns the first square, scanning from a8 to h1, holding a king
// of the given color, or NoPosition when that king is gone.
func (b *Board) FindKing(color PlayerColor) Position {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b.squares[row][col]
			if p.Type == King && p.Color == color {
				return Position{Row: row, Col: col}
			}
		}
	}
	return NoPosition
}

func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// Symbols returns the display letter of every cell.
func (b *Board) Symbols() [8][8]rune {
	var out [8][8]rune
	for row := range b.squares {
		for col, p := range b.squares[row] {
			out[row][col] = p.Symbol()
		}
	}
	return out
}

// Rows returns one string of symbols per rank, rank 8 first.
func (b *Board) Rows() []string {
	symbols := b.Symbols()
	rows := make([]string, 8)
	for i, row := range symbols {
		rows[i] = string(row[:])
	}
	return rows
}

// Count returns the number of non-empty cells held by color.
func (b *Board) Count(color PlayerColor) int {
	n := 0
	for row := range b.squares {
		for _, p := range b.squares[row] {
			if !p.IsEmpty() && p.Color == color {
				n++
			}
		}
	}
	return n
}

func (b *Board) State() *BoardState {
	return &BoardState{
		Rows:              b.Rows(),
		WhiteKingPosition: b.FindKing(PlayerColorWhite),
		BlackKingPosition: b.FindKing(PlayerColorBlack),
	}
}
