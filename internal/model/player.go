package model

type PlayerColor string

const (
	PlayerColorWhite PlayerColor = "white"
	PlayerColorBlack PlayerColor = "black"
)

func (c PlayerColor) Opponent() PlayerColor {
	if c == PlayerColorWhite {
		return PlayerColorBlack
	}
	return PlayerColorWhite
}

// Title is the capitalised name used in prompts and results.
func (c PlayerColor) Title() string {
	if c == PlayerColorWhite {
		return "White"
	}
	return "Black"
}

// ClientPlayer is the per-side summary sent to clients.
type ClientPlayer struct {
	ID        string      `json:"id"`
	Color     PlayerColor `json:"color"`
	Automatic bool        `json:"automatic"`
	TimeUsed  int64       `json:"timeUsed"`
}
