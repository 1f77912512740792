package console

import (
	"bufio"
	"fmt"
	"io"

	"github.com/benbeisheim/randchess/internal/model"
)

// Render writes the board with rank labels 8..1 down the left side and file
// labels a..h underneath.
func Render(w io.Writer, b *model.Board) error {
	bw := bufio.NewWriter(w)
	for i, row := range b.Symbols() {
		fmt.Fprintf(bw, "%d ", 8-i)
		for _, s := range row {
			fmt.Fprintf(bw, "%c ", s)
		}
		fmt.Fprintln(bw)
	}
	fmt.Fprintln(bw, "  a b c d e f g h")
	return bw.Flush()
}

// RenderHistory writes the move list in numbered pairs.
func RenderHistory(w io.Writer, history []model.Move) error {
	bw := bufio.NewWriter(w)
	if len(history) == 0 {
		fmt.Fprintln(bw, "No moves yet.")
	}
	for i, m := range history {
		white := m.WhitePly.Notation
		if m.WhitePly.IsZero() {
			white = "..."
		}
		fmt.Fprintf(bw, "%d. %s", i+1, white)
		if !m.BlackPly.IsZero() {
			fmt.Fprintf(bw, " %s", m.BlackPly.Notation)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
