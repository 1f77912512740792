package service

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbeisheim/randchess/internal/model"
	"github.com/benbeisheim/randchess/internal/store"
	"github.com/benbeisheim/randchess/internal/ws"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []ws.Message
	fail     bool
	closed   bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, v.(ws.Message))
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) lastState(t *testing.T) model.GameState {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		t.Fatal("no messages received")
	}
	msg := c.messages[len(c.messages)-1]
	if msg.Type != ws.MessageTypeGameState {
		t.Fatalf("message type = %q; want %q", msg.Type, ws.MessageTypeGameState)
	}
	var s model.GameState
	if err := json.Unmarshal(msg.Payload, &s); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return s
}

func newTestService(t *testing.T) (*GameService, *store.Archive) {
	t.Helper()
	archive, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory(): %v", err)
	}
	t.Cleanup(func() { archive.Close() })
	return NewGameService(NewGameManager(99, archive)), archive
}

func TestCreateAndMove(t *testing.T) {
	gs, _ := newTestService(t)

	gameID, err := gs.CreateGame("alice")
	if err != nil {
		t.Fatalf("CreateGame() error = %v", err)
	}

	conn := &fakeConn{}
	if err := gs.RegisterConnection(gameID, "alice", conn); err != nil {
		t.Fatalf("RegisterConnection() error = %v", err)
	}
	if s := conn.lastState(t); s.ToMove != model.PlayerColorWhite || s.Players.White.ID != "alice" {
		t.Errorf("initial broadcast = %+v; want white to move owned by alice", s)
	}

	state, err := gs.HandleMove(gameID, "alice", "e2", "e4")
	if err != nil {
		t.Fatalf("HandleMove() error = %v", err)
	}
	if state.ToMove != model.PlayerColorWhite {
		t.Errorf("ToMove = %v; want white after the automatic reply", state.ToMove)
	}
	if len(state.MoveHistory) != 1 || state.MoveHistory[0].BlackPly.IsZero() {
		t.Errorf("history = %+v; want e4 and a reply", state.MoveHistory)
	}
	if got := conn.lastState(t); len(got.MoveHistory) != 1 {
		t.Errorf("broadcast history = %+v; want one move", got.MoveHistory)
	}
}

func TestMoveErrors(t *testing.T) {
	gs, _ := newTestService(t)
	gameID, err := gs.CreateGame("alice")
	if err != nil {
		t.Fatalf("CreateGame() error = %v", err)
	}

	tests := []struct {
		name     string
		gameID   string
		playerID string
		from, to string
		wantErr  error
	}{
		{"unknown game", "missing", "alice", "e2", "e4", ErrGameNotFound},
		{"stranger", gameID, "mallory", "e2", "e4", ErrNotAuthorized},
		{"bad square", gameID, "alice", "e9", "e4", model.ErrBadSquare},
		{"illegal shape", gameID, "alice", "e2", "e5", model.ErrIllegalShape},
		{"opponent piece", gameID, "alice", "e7", "e5", model.ErrWrongOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gs.HandleMove(tt.gameID, tt.playerID, tt.from, tt.to)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("HandleMove() error = %v; want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFinishedGameIsArchived(t *testing.T) {
	archive, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory(): %v", err)
	}
	defer archive.Close()
	gm := NewGameManager(1, archive)

	b := &model.Board{}
	b.Place(model.Position{Row: 0, Col: 4}, model.NewPiece(model.PlayerColorBlack, model.King))
	b.Place(model.Position{Row: 4, Col: 4}, model.NewPiece(model.PlayerColorWhite, model.Queen))
	b.Place(model.Position{Row: 7, Col: 0}, model.NewPiece(model.PlayerColorWhite, model.King))
	gm.games["endgame"] = &hostedGame{
		game:        model.NewGameWithBoard("endgame", b, model.PlayerColorWhite, nil),
		ownerID:     "alice",
		connections: NewGameConnections(),
	}

	state, err := gm.MakeMove("endgame", "alice", model.Position{Row: 4, Col: 4}, model.Position{Row: 0, Col: 4})
	if err != nil {
		t.Fatalf("MakeMove() error = %v", err)
	}
	if state.Resolve == nil || state.Resolve.Winner != model.PlayerColorWhite {
		t.Fatalf("Resolve = %+v; want white win", state.Resolve)
	}

	rec, err := gm.ArchivedGame("endgame")
	if err != nil {
		t.Fatalf("ArchivedGame() error = %v", err)
	}
	if rec.PlayerID != "alice" || rec.Result.Reason != model.ReasonKingCaptured {
		t.Errorf("record = %+v; want alice's king capture", rec)
	}
	stats, err := gm.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.GamesPlayed != 1 || stats.HumanWins != 1 {
		t.Errorf("stats = %+v; want one human win", stats)
	}

	if _, err := gm.MakeMove("endgame", "alice", model.Position{Row: 0, Col: 4}, model.Position{Row: 1, Col: 4}); !errors.Is(err, model.ErrGameOver) {
		t.Errorf("move after end error = %v; want ErrGameOver", err)
	}
}

func TestMoveRefusedWhileBlackToMove(t *testing.T) {
	gm := NewGameManager(1, nil)
	gm.games["g"] = &hostedGame{
		game:        model.NewGameWithBoard("g", model.NewBoard(), model.PlayerColorBlack, nil),
		ownerID:     "alice",
		connections: NewGameConnections(),
	}

	e7 := model.Position{Row: 1, Col: 4}
	e5 := model.Position{Row: 3, Col: 4}
	if _, err := gm.MakeMove("g", "alice", e7, e5); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("MakeMove(e7, e5) error = %v; want ErrNotYourTurn", err)
	}
	state, err := gm.GetGameState("g")
	if err != nil {
		t.Fatalf("GetGameState() error = %v", err)
	}
	if len(state.MoveHistory) != 0 || state.Board.Rows[1] != "pppppppp" {
		t.Errorf("state = %+v; want untouched board", state)
	}
}

func TestConcurrentMovesKeepBlackAutomatic(t *testing.T) {
	gm := NewGameManager(5, nil)
	if err := gm.CreateGame("g", "alice"); err != nil {
		t.Fatalf("CreateGame() error = %v", err)
	}

	white := [2]model.Position{{Row: 6, Col: 4}, {Row: 4, Col: 4}}
	black := [2]model.Position{{Row: 1, Col: 4}, {Row: 3, Col: 4}}

	start := make(chan struct{})
	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 40; i++ {
		move := white
		if i%2 == 1 {
			move = black
		}
		wg.Add(1)
		go func(move [2]model.Position) {
			defer wg.Done()
			<-start
			_, err := gm.MakeMove("g", "alice", move[0], move[1])
			if move == black {
				errs <- err
			}
		}(move)
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err == nil {
			t.Error("a black move was accepted from the human")
		} else if !errors.Is(err, model.ErrWrongOwner) && !errors.Is(err, ErrNotYourTurn) && !errors.Is(err, model.ErrGameOver) {
			t.Errorf("black move error = %v; want ErrWrongOwner or ErrNotYourTurn", err)
		}
	}

	state, err := gm.GetGameState("g")
	if err != nil {
		t.Fatalf("GetGameState() error = %v", err)
	}
	for i, m := range state.MoveHistory {
		if !m.BlackPly.IsZero() && !m.BlackPly.Automatic {
			t.Errorf("move %d: black ply %q was not automatic", i+1, m.BlackPly.Notation)
		}
	}
	if state.ToMove != model.PlayerColorWhite && state.Resolve == nil {
		t.Errorf("ToMove = %v after all requests; want white", state.ToMove)
	}
}

// slowArchive blocks SaveGame until released.
type slowArchive struct {
	entered chan struct{}
	release chan struct{}
}

func (a *slowArchive) SaveGame(rec store.GameRecord) error {
	close(a.entered)
	<-a.release
	return nil
}

func (a *slowArchive) LoadGame(id string) (store.GameRecord, error) {
	return store.GameRecord{}, store.ErrGameNotFound
}

func (a *slowArchive) LoadStats() (*store.Stats, error) {
	return &store.Stats{}, nil
}

func TestArchivingDoesNotBlockOtherGames(t *testing.T) {
	archive := &slowArchive{entered: make(chan struct{}), release: make(chan struct{})}
	gm := NewGameManager(1, archive)

	b := &model.Board{}
	b.Place(model.Position{Row: 0, Col: 4}, model.NewPiece(model.PlayerColorBlack, model.King))
	b.Place(model.Position{Row: 4, Col: 4}, model.NewPiece(model.PlayerColorWhite, model.Queen))
	b.Place(model.Position{Row: 7, Col: 0}, model.NewPiece(model.PlayerColorWhite, model.King))
	gm.games["endgame"] = &hostedGame{
		game:        model.NewGameWithBoard("endgame", b, model.PlayerColorWhite, nil),
		ownerID:     "alice",
		connections: NewGameConnections(),
	}

	moved := make(chan error, 1)
	go func() {
		_, err := gm.MakeMove("endgame", "alice", model.Position{Row: 4, Col: 4}, model.Position{Row: 0, Col: 4})
		moved <- err
	}()
	<-archive.entered

	done := make(chan error, 1)
	go func() {
		if err := gm.CreateGame("other", "bob"); err != nil {
			done <- err
			return
		}
		_, err := gm.GetGameState("endgame")
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("manager call during archiving error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("manager calls blocked while a game was being archived")
	}

	close(archive.release)
	if err := <-moved; err != nil {
		t.Fatalf("MakeMove() error = %v", err)
	}
}

func TestNoArchive(t *testing.T) {
	gm := NewGameManager(1, nil)
	if _, err := gm.Stats(); !errors.Is(err, ErrNoArchive) {
		t.Errorf("Stats() error = %v; want ErrNoArchive", err)
	}
	if _, err := gm.ArchivedGame("x"); !errors.Is(err, ErrNoArchive) {
		t.Errorf("ArchivedGame() error = %v; want ErrNoArchive", err)
	}
}

func TestConnections(t *testing.T) {
	gm := NewGameManager(1, nil)
	if err := gm.CreateGame("g", "alice"); err != nil {
		t.Fatalf("CreateGame() error = %v", err)
	}
	if err := gm.CreateGame("g", "bob"); !errors.Is(err, ErrGameExists) {
		t.Errorf("duplicate CreateGame() error = %v; want ErrGameExists", err)
	}

	first, second, broken := &fakeConn{}, &fakeConn{}, &fakeConn{}
	if err := gm.RegisterConnection("g", "alice", first); err != nil {
		t.Fatalf("RegisterConnection(first) error = %v", err)
	}
	if err := gm.RegisterConnection("g", "alice", second); err != nil {
		t.Fatalf("RegisterConnection(second) error = %v", err)
	}
	if !second.closed {
		t.Error("duplicate connection was not closed")
	}
	if err := gm.RegisterConnection("g", "spectator", broken); err != nil {
		t.Fatalf("RegisterConnection(spectator) error = %v", err)
	}

	hg := gm.games["g"]
	if n := hg.connections.Len(); n != 2 {
		t.Fatalf("connections = %d; want 2", n)
	}

	broken.fail = true
	hg.connections.Broadcast(hg.state())
	if n := hg.connections.Len(); n != 1 {
		t.Errorf("connections after failed write = %d; want 1", n)
	}

	gm.UnregisterConnection("g", "alice", second)
	if n := hg.connections.Len(); n != 1 {
		t.Errorf("unregistering a stale connection removed the live one")
	}
	gm.UnregisterConnection("g", "alice", first)
	if n := hg.connections.Len(); n != 0 {
		t.Errorf("connections = %d; want 0", n)
	}
}
