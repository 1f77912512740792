package model

import "fmt"

// SimpleMove is a bare from/to pair.
type SimpleMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Ply is one side's half of a move as it was played.
type Ply struct {
	Piece         Piece     `json:"piece"`
	From          Position  `json:"from"`
	To            Position  `json:"to"`
	CapturedPiece Piece     `json:"capturedPiece"`
	Promotion     PieceType `json:"promotion,omitempty"`
	Automatic     bool      `json:"automatic"`
	Notation      string    `json:"notation"`
}

func (p Ply) IsZero() bool {
	return p.Notation == ""
}

// Move pairs White's ply with Black's reply. BlackPly is zero until Black
// has moved.
type Move struct {
	WhitePly Ply `json:"whitePly"`
	BlackPly Ply `json:"blackPly"`
}

// makePly describes the move before it is applied to b.
func makePly(b *Board, from, to Position) Ply {
	piece := b.Piece(from)
	ply := Ply{
		Piece:         piece,
		From:          from,
		To:            to,
		CapturedPiece: b.Piece(to),
	}
	if piece.Type == Pawn && to.Row == promotionRow(piece.Color) {
		ply.Promotion = Queen
	}
	ply.Notation = getNotation(ply)
	return ply
}

func getNotation(ply Ply) string {
	prefix := ply.Piece.Type.getPieceNotation()
	pawnFile := ""
	if ply.Piece.Type == Pawn && ply.From.Col != ply.To.Col {
		pawnFile = ply.From.fileNotation()
	}
	capture := ""
	if !ply.CapturedPiece.IsEmpty() {
		capture = "x"
	}
	suffix := ""
	if ply.Promotion != Empty {
		suffix = "=" + ply.Promotion.getPieceNotation()
	}
	if ply.CapturedPiece.Type == King {
		suffix += "#"
	}
	return fmt.Sprintf("%s%s%s%s%s", prefix, pawnFile, capture, ply.To, suffix)
}
