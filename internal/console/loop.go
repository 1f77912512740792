package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/benbeisheim/randchess/internal/model"
	"github.com/gofiber/fiber/v2/log"
)

// Session runs one game in a terminal: it draws the board, reads the human's
// moves and lets the automatic side reply.
type Session struct {
	game *model.Game
	in   *bufio.Scanner
	out  io.Writer
}

func NewSession(game *model.Game, in io.Reader, out io.Writer) *Session {
	return &Session{
		game: game,
		in:   bufio.NewScanner(in),
		out:  out,
	}
}

// Run plays until a side loses its king, the automatic side has nothing to
// play, the human quits or input runs out. It returns the result, or nil if
// the game was abandoned.
func (s *Session) Run() (*model.Result, error) {
	for {
		if res := s.game.Result(); res != nil {
			s.announceResult(res)
			return res, nil
		}
		if err := Render(s.out, s.game.Board()); err != nil {
			return nil, err
		}

		side := s.game.ToMove()
		fmt.Fprintf(s.out, "%s to move\n", side.Title())

		if side == s.game.AutoSide() {
			ply, err := s.game.PlayAutoMove()
			if err != nil && !errors.Is(err, model.ErrNoMoves) {
				return nil, err
			}
			if err == nil {
				log.Debugf("game %s: automatic move %s", s.game.ID, ply.Notation)
				fmt.Fprintf(s.out, "%s plays %s\n", side.Title(), ply.Notation)
			}
			continue
		}

		fmt.Fprint(s.out, "Enter move (e.g. e2 e4): ")
		if !s.in.Scan() {
			if err := s.in.Err(); err != nil {
				return nil, err
			}
			fmt.Fprintln(s.out)
			return nil, nil
		}
		line := strings.TrimSpace(s.in.Text())

		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			fmt.Fprintln(s.out, "Game abandoned.")
			return nil, nil
		case "history":
			if err := RenderHistory(s.out, s.game.History()); err != nil {
				return nil, err
			}
			continue
		}

		from, to, err := ParseMove(line)
		if err != nil {
			fmt.Fprintf(s.out, "Invalid input: %v\n", err)
			continue
		}
		ply, err := s.game.HandleMove(from, to)
		if err != nil {
			log.Debugf("game %s: rejected %s-%s: %v", s.game.ID, from, to, err)
			fmt.Fprintf(s.out, "%s\n", describe(err))
			continue
		}
		log.Debugf("game %s: human move %s", s.game.ID, ply.Notation)
	}
}

func (s *Session) announceResult(res *model.Result) {
	if err := Render(s.out, s.game.Board()); err != nil {
		log.Warnf("render final board: %v", err)
	}
	if res.Winner == "" {
		fmt.Fprintf(s.out, "Game over: %s. Nobody wins.\n", res.Reason)
	} else {
		fmt.Fprintf(s.out, "Game over: %s. %s wins!\n", res.Reason, res.Winner.Title())
	}
	fmt.Fprintf(s.out, "White thought for %s, Black for %s.\n",
		s.game.TimeUsed(model.PlayerColorWhite).Round(time.Millisecond),
		s.game.TimeUsed(model.PlayerColorBlack).Round(time.Millisecond))
}

func describe(err error) string {
	switch {
	case errors.Is(err, model.ErrOutOfBounds):
		return "That square is off the board."
	case errors.Is(err, model.ErrEmptySource):
		return "There is no piece on that square."
	case errors.Is(err, model.ErrWrongOwner):
		return "That is not your piece."
	case errors.Is(err, model.ErrIllegalShape):
		return "Illegal move."
	}
	return err.Error()
}
