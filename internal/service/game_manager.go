// service/game_manager.go
package service

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/benbeisheim/randchess/internal/model"
	"github.com/benbeisheim/randchess/internal/store"
	"github.com/gofiber/fiber/v2/log"
)

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrGameExists    = errors.New("game already exists")
	ErrNotAuthorized = errors.New("not authorized for this game")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrNoArchive     = errors.New("archive is disabled")
)

// Archive keeps finished games. *store.Archive satisfies it.
type Archive interface {
	SaveGame(rec store.GameRecord) error
	LoadGame(id string) (store.GameRecord, error)
	LoadStats() (*store.Stats, error)
}

type hostedGame struct {
	game        *model.Game
	ownerID     string
	connections *GameConnections

	mu       sync.Mutex // held for a human move together with its reply
	archived bool       // guarded by mu
}

type GameManager struct {
	games   map[string]*hostedGame
	rng     *rand.Rand // seeds each game's generator
	archive Archive
	mu      sync.RWMutex
}

// NewGameManager hosts games whose opponents draw their seeds from seed.
// archive may be nil.
func NewGameManager(seed int64, archive Archive) *GameManager {
	return &GameManager{
		games:   make(map[string]*hostedGame),
		rng:     rand.New(rand.NewSource(seed)),
		archive: archive,
	}
}

func (gm *GameManager) CreateGame(gameID string, playerID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}

	rng := rand.New(rand.NewSource(gm.rng.Int63()))
	gm.games[gameID] = &hostedGame{
		game:        model.NewGame(gameID, rng),
		ownerID:     playerID,
		connections: NewGameConnections(),
	}
	log.Infof("created game %s for player %s", gameID, playerID)
	return nil
}

func (gm *GameManager) get(gameID string) (*hostedGame, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	hg, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return hg, nil
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	hg, err := gm.get(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return hg.state(), nil
}

func (hg *hostedGame) state() model.GameState {
	s := hg.game.State()
	s.Players.White.ID = hg.ownerID
	return s
}

// MakeMove plays the owner's move and, unless that ended the game, the
// automatic reply. Watchers are sent the resulting state.
func (gm *GameManager) MakeMove(gameID string, playerID string, from, to model.Position) (model.GameState, error) {
	hg, err := gm.get(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	if hg.ownerID != playerID {
		return model.GameState{}, ErrNotAuthorized
	}

	hg.mu.Lock()
	defer hg.mu.Unlock()

	ply, err := hg.game.HandleMove(from, to)
	if errors.Is(err, model.ErrAutoSideTurn) {
		return model.GameState{}, ErrNotYourTurn
	}
	if err != nil {
		return model.GameState{}, err
	}
	log.Debugf("game %s: %s played %s", gameID, playerID, ply.Notation)

	if !hg.game.IsOver() {
		reply, err := hg.game.PlayAutoMove()
		switch {
		case err == nil:
			log.Debugf("game %s: automatic reply %s", gameID, reply.Notation)
		case errors.Is(err, model.ErrNoMoves):
			log.Infof("game %s: automatic side has no moves", gameID)
		default:
			return model.GameState{}, err
		}
	}

	if hg.game.IsOver() {
		gm.archiveGame(hg)
	}

	state := hg.state()
	hg.connections.Broadcast(state)
	return state, nil
}

// archiveGame stores a finished game once. hg.mu must be held.
func (gm *GameManager) archiveGame(hg *hostedGame) {
	if hg.archived {
		return
	}
	hg.archived = true
	res := hg.game.Result()
	log.Infof("game %s finished: %s (winner %q)", hg.game.ID, res.Reason, res.Winner)

	if gm.archive == nil {
		return
	}
	rec, err := store.NewGameRecord(hg.game, hg.ownerID)
	if err != nil {
		log.Errorf("build record for game %s: %v", hg.game.ID, err)
		return
	}
	if err := gm.archive.SaveGame(rec); err != nil {
		log.Errorf("archive game %s: %v", hg.game.ID, err)
	}
}

// ArchivedGame returns a finished game from the archive.
func (gm *GameManager) ArchivedGame(gameID string) (store.GameRecord, error) {
	if gm.archive == nil {
		return store.GameRecord{}, ErrNoArchive
	}
	return gm.archive.LoadGame(gameID)
}

func (gm *GameManager) Stats() (*store.Stats, error) {
	if gm.archive == nil {
		return nil, ErrNoArchive
	}
	return gm.archive.LoadStats()
}

// RegisterConnection lets the owner, or anyone while the game is running,
// watch the game. The current state is sent straight away.
func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn Conn) error {
	hg, err := gm.get(gameID)
	if err != nil {
		return err
	}
	if hg.ownerID != playerID && hg.game.IsOver() {
		return ErrNotAuthorized
	}
	if !hg.connections.Register(playerID, conn) {
		log.Infof("player %s already watching game %s, rejecting new connection", playerID, gameID)
		return conn.Close()
	}
	log.Debugf("registered connection for player %s in game %s", playerID, gameID)

	hg.connections.Broadcast(hg.state())
	return nil
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn Conn) {
	hg, err := gm.get(gameID)
	if err != nil {
		return
	}
	hg.connections.Unregister(playerID, conn)
}
