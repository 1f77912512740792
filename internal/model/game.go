package model

import (
	"math/rand"
	"sync"
	"time"
)

const (
	ReasonKingCaptured = "king captured"
	ReasonNoMoves      = "no moves"
)

// Result describes how a game ended. Winner is empty when nobody won.
type Result struct {
	Winner PlayerColor `json:"winner,omitempty"`
	Reason string      `json:"reason"`
}

// Game drives one human against the automatic opponent. The human plays
// White and the opponent plays Black. The random generator is supplied by
// the caller so that a fixed seed reproduces the opponent's choices.
type Game struct {
	ID         string
	mu         sync.Mutex
	board      *Board
	toMove     PlayerColor
	autoSide   PlayerColor
	history    []Move
	lastMove   *SimpleMove
	resolve    *Result
	rng        *rand.Rand
	whiteClock *Clock
	blackClock *Clock
	startedAt  time.Time
}

type GameState struct {
	ID          string      `json:"id"`
	Board       *BoardState `json:"boardState"`
	ToMove      PlayerColor `json:"toMove"`
	MoveHistory []Move      `json:"moveHistory"`
	Players     struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
	LastMove *SimpleMove `json:"lastMove"`
	Resolve  *Result     `json:"resolve"`
}

// NewGame starts a game from the standard position with White to move.
func NewGame(id string, rng *rand.Rand) *Game {
	return NewGameWithBoard(id, NewBoard(), PlayerColorWhite, rng)
}

// NewGameWithBoard starts a game from an arbitrary board. The board is owned
// by the game from then on.
func NewGameWithBoard(id string, board *Board, toMove PlayerColor, rng *rand.Rand) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g := &Game{
		ID:         id,
		board:      board,
		toMove:     toMove,
		autoSide:   PlayerColorBlack,
		history:    make([]Move, 0),
		rng:        rng,
		whiteClock: NewClock(),
		blackClock: NewClock(),
		startedAt:  time.Now(),
	}
	g.clock(toMove).Start()
	return g
}

func (g *Game) clock(c PlayerColor) *Clock {
	if c == PlayerColorWhite {
		return g.whiteClock
	}
	return g.blackClock
}

// HandleMove applies a move requested by the human for the side to move.
// The request is refused, leaving the game untouched, when the game is over,
// the automatic side is to move, a square is off the board, the source is
// empty, the piece belongs to the other side or the piece cannot make that
// move.
func (g *Game) HandleMove(from, to Position) (Ply, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.resolve != nil {
		return Ply{}, moveError(ErrGameOver, from, to)
	}
	if g.toMove == g.autoSide {
		return Ply{}, moveError(ErrAutoSideTurn, from, to)
	}
	if !from.IsValid() || !to.IsValid() {
		return Ply{}, moveError(ErrOutOfBounds, from, to)
	}
	piece := g.board.Piece(from)
	if piece.IsEmpty() {
		return Ply{}, moveError(ErrEmptySource, from, to)
	}
	if piece.Color != g.toMove {
		return Ply{}, moveError(ErrWrongOwner, from, to)
	}
	return g.executeMove(from, to, false)
}

// PlayAutoMove picks uniformly among the candidate moves of the automatic
// side and plays it. It fails with ErrNoMoves, ending the game without a
// winner, when there is nothing to play.
func (g *Game) PlayAutoMove() (Ply, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.resolve != nil {
		return Ply{}, ErrGameOver
	}
	if g.toMove != g.autoSide {
		return Ply{}, ErrNotAutoSide
	}
	candidates := g.candidateMoves(g.toMove)
	if len(candidates) == 0 {
		g.finish(&Result{Reason: ReasonNoMoves})
		return Ply{}, ErrNoMoves
	}
	choice := candidates[g.rng.Intn(len(candidates))]
	return g.executeMove(choice.From, choice.To, true)
}

func (g *Game) executeMove(from, to Position, automatic bool) (Ply, error) {
	ply := makePly(g.board, from, to)
	ply.Automatic = automatic
	if err := g.board.Move(from, to); err != nil {
		return Ply{}, moveError(err, from, to)
	}

	n := len(g.history)
	switch {
	case ply.Piece.Color == PlayerColorWhite:
		g.history = append(g.history, Move{WhitePly: ply})
	case n > 0 && g.history[n-1].BlackPly.IsZero():
		g.history[n-1].BlackPly = ply
	default:
		g.history = append(g.history, Move{BlackPly: ply})
	}
	g.lastMove = &SimpleMove{From: from, To: to}

	g.clock(g.toMove).Stop()
	g.switchTurn()
	g.clock(g.toMove).Start()
	g.checkGameEnd()
	return ply, nil
}

func (g *Game) switchTurn() {
	g.toMove = g.toMove.Opponent()
}

func (g *Game) checkGameEnd() {
	if g.board.FindKing(g.toMove) == NoPosition {
		g.finish(&Result{Winner: g.toMove.Opponent(), Reason: ReasonKingCaptured})
	}
}

func (g *Game) finish(r *Result) {
	g.resolve = r
	g.whiteClock.Stop()
	g.blackClock.Stop()
}

// CandidateMoves lists every move color could make: each from/to pair its
// pieces accept after which color still has a king somewhere on the board.
func (g *Game) CandidateMoves(color PlayerColor) []SimpleMove {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.candidateMoves(color)
}

func (g *Game) candidateMoves(color PlayerColor) []SimpleMove {
	moves := []SimpleMove{}
	for from := 0; from < 64; from++ {
		src := Position{Row: from / 8, Col: from % 8}
		piece := g.board.Piece(src)
		if piece.IsEmpty() || piece.Color != color {
			continue
		}
		for to := 0; to < 64; to++ {
			dst := Position{Row: to / 8, Col: to % 8}
			if !piece.IsMoveValid(src, dst, g.board) {
				continue
			}
			sim := g.board.Clone()
			if err := sim.Move(src, dst); err != nil {
				continue
			}
			if sim.FindKing(color) != NoPosition {
				moves = append(moves, SimpleMove{From: src, To: dst})
			}
		}
	}
	return moves
}

// IsCheckmate reports whether color has lost its king.
func (g *Game) IsCheckmate(color PlayerColor) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.FindKing(color) == NoPosition
}

// Winner returns the winning side once the game has been decided.
func (g *Game) Winner() (PlayerColor, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resolve == nil || g.resolve.Winner == "" {
		return "", false
	}
	return g.resolve.Winner, true
}

// Result returns how the game ended, or nil while it is still running.
func (g *Game) Result() *Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resolve == nil {
		return nil
	}
	r := *g.resolve
	return &r
}

func (g *Game) IsOver() bool {
	return g.Result() != nil
}

func (g *Game) ToMove() PlayerColor {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.toMove
}

// AutoSide is the color played by the automatic opponent.
func (g *Game) AutoSide() PlayerColor {
	return g.autoSide
}

// Board returns a copy of the current board.
func (g *Game) Board() *Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Clone()
}

func (g *Game) History() []Move {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Move, len(g.history))
	copy(out, g.history)
	return out
}

func (g *Game) TimeUsed(c PlayerColor) time.Duration {
	return g.clock(c).TimeUsed()
}

func (g *Game) StartedAt() time.Time {
	return g.startedAt
}

func (g *Game) State() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	state := GameState{
		ID:          g.ID,
		Board:       g.board.State(),
		ToMove:      g.toMove,
		MoveHistory: make([]Move, len(g.history)),
	}
	copy(state.MoveHistory, g.history)
	state.Players.White = ClientPlayer{
		Color:    PlayerColorWhite,
		TimeUsed: g.whiteClock.TimeUsed().Milliseconds(),
	}
	state.Players.Black = ClientPlayer{
		Color:     PlayerColorBlack,
		Automatic: true,
		TimeUsed:  g.blackClock.TimeUsed().Milliseconds(),
	}
	if g.lastMove != nil {
		lm := *g.lastMove
		state.LastMove = &lm
	}
	if g.resolve != nil {
		r := *g.resolve
		state.Resolve = &r
	}
	return state
}
