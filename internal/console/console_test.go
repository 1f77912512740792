package console

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/benbeisheim/randchess/internal/model"
	"github.com/google/go-cmp/cmp"
)

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, model.NewBoard()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := strings.Join([]string{
		"8 r n b q k b n r ",
		"7 p p p p p p p p ",
		"6 . . . . . . . . ",
		"5 . . . . . . . . ",
		"4 . . . . . . . . ",
		"3 . . . . . . . . ",
		"2 P P P P P P P P ",
		"1 R N B Q K B N R ",
		"  a b c d e f g h",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		line     string
		from, to model.Position
		wantErr  bool
	}{
		{"e2 e4", model.Position{Row: 6, Col: 4}, model.Position{Row: 4, Col: 4}, false},
		{"  G1\tf3 ", model.Position{Row: 7, Col: 6}, model.Position{Row: 5, Col: 5}, false},
		{"e2e4", model.NoPosition, model.NoPosition, true},
		{"e2 e4 e5", model.NoPosition, model.NoPosition, true},
		{"e2 e44", model.NoPosition, model.NoPosition, true},
		{"z2 e4", model.NoPosition, model.NoPosition, true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			from, to, err := ParseMove(tt.line)
			if tt.wantErr {
				if !errors.Is(err, ErrBadInput) {
					t.Errorf("ParseMove(%q) error = %v; want ErrBadInput", tt.line, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMove(%q) error = %v", tt.line, err)
			}
			if from != tt.from || to != tt.to {
				t.Errorf("ParseMove(%q) = %v, %v; want %v, %v", tt.line, from, to, tt.from, tt.to)
			}
		})
	}
}

func TestRenderHistory(t *testing.T) {
	history := []model.Move{
		{WhitePly: model.Ply{Notation: "e4"}, BlackPly: model.Ply{Notation: "Nf6"}},
		{WhitePly: model.Ply{Notation: "Qh5"}},
	}
	var buf bytes.Buffer
	if err := RenderHistory(&buf, history); err != nil {
		t.Fatalf("RenderHistory() error = %v", err)
	}
	if diff := cmp.Diff("1. e4 Nf6\n2. Qh5\n", buf.String()); diff != "" {
		t.Errorf("RenderHistory() mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionRejectsThenPlays(t *testing.T) {
	game := model.NewGame("console", rand.New(rand.NewSource(5)))
	in := strings.NewReader("e2 e1\nbogus\ne7 e5\ne2 e4\nhistory\nquit\n")
	var out bytes.Buffer

	res, err := NewSession(game, in, &out).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res != nil {
		t.Errorf("Run() result = %+v; want nil for an abandoned game", res)
	}

	text := out.String()
	for _, want := range []string{
		"White to move",
		"Illegal move.",
		"Invalid input:",
		"That is not your piece.",
		"Black to move",
		"Black plays ",
		"1. e4 ",
		"Game abandoned.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}

	history := game.History()
	if len(history) != 1 || history[0].BlackPly.IsZero() {
		t.Errorf("history = %+v; want white and black ply", history)
	}
}

func TestSessionEndsOnKingCapture(t *testing.T) {
	b := &model.Board{}
	b.Place(model.Position{Row: 0, Col: 4}, model.NewPiece(model.PlayerColorBlack, model.King))
	b.Place(model.Position{Row: 4, Col: 4}, model.NewPiece(model.PlayerColorWhite, model.Queen))
	b.Place(model.Position{Row: 7, Col: 0}, model.NewPiece(model.PlayerColorWhite, model.King))
	game := model.NewGameWithBoard("console", b, model.PlayerColorWhite, nil)

	var out bytes.Buffer
	res, err := NewSession(game, strings.NewReader("e4 e8\n"), &out).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res == nil || res.Winner != model.PlayerColorWhite {
		t.Fatalf("Run() result = %+v; want white win", res)
	}
	if !strings.Contains(out.String(), "White wins!") {
		t.Errorf("output missing winner announcement:\n%s", out.String())
	}
}

func TestSessionEndOfInput(t *testing.T) {
	game := model.NewGame("console", rand.New(rand.NewSource(1)))
	res, err := NewSession(game, strings.NewReader(""), &bytes.Buffer{}).Run()
	if err != nil || res != nil {
		t.Errorf("Run() = %+v, %v; want nil, nil", res, err)
	}
}
