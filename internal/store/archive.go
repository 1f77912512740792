package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/benbeisheim/randchess/internal/model"
	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyStats      = "stats"
	gameKeyPrefix = "game/"
)

var ErrGameNotFound = errors.New("archived game not found")

// GameRecord is a finished game as kept in the archive.
type GameRecord struct {
	ID          string        `json:"id"`
	PlayerID    string        `json:"playerId,omitempty"`
	Result      model.Result  `json:"result"`
	MoveHistory []model.Move  `json:"moveHistory"`
	FinalBoard  []string      `json:"finalBoard"`
	StartedAt   time.Time     `json:"startedAt"`
	Duration    time.Duration `json:"duration"`
}

// NewGameRecord captures the final state of a finished game.
func NewGameRecord(g *model.Game, playerID string) (GameRecord, error) {
	res := g.Result()
	if res == nil {
		return GameRecord{}, fmt.Errorf("game %s: %w", g.ID, errGameRunning)
	}
	state := g.State()
	return GameRecord{
		ID:          g.ID,
		PlayerID:    playerID,
		Result:      *res,
		MoveHistory: state.MoveHistory,
		FinalBoard:  state.Board.Rows,
		StartedAt:   g.StartedAt(),
		Duration:    time.Since(g.StartedAt()),
	}, nil
}

var errGameRunning = errors.New("game is still running")

// Stats aggregates every archived game.
type Stats struct {
	GamesPlayed   int           `json:"gamesPlayed"`
	HumanWins     int           `json:"humanWins"`
	AutoWins      int           `json:"autoWins"`
	NoMoveEndings int           `json:"noMoveEndings"`
	TotalPlayTime time.Duration `json:"totalPlayTime"`
	LongestGame   int           `json:"longestGame"` // in full moves
}

// Archive wraps BadgerDB for finished games.
type Archive struct {
	db *badger.DB
}

// Open opens (creating if needed) an archive in dir.
func Open(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	opts := badger.DefaultOptions(filepath.Clean(dir))
	opts.Logger = nil // Disable logging
	return open(opts)
}

// OpenInMemory opens an archive that lives only as long as the process.
func OpenInMemory() (*Archive, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Archive, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// SaveGame stores rec and folds it into the aggregate stats in one
// transaction. Saving the same game twice only counts it once.
func (a *Archive) SaveGame(rec GameRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	key := []byte(gameKeyPrefix + rec.ID)

	return a.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return txn.Set(key, data)
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		stats, err := loadStats(txn)
		if err != nil {
			return err
		}
		stats.record(rec)
		statsData, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		if err := txn.Set([]byte(keyStats), statsData); err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

func (s *Stats) record(rec GameRecord) {
	s.GamesPlayed++
	s.TotalPlayTime += rec.Duration
	if len(rec.MoveHistory) > s.LongestGame {
		s.LongestGame = len(rec.MoveHistory)
	}
	switch {
	case rec.Result.Reason == model.ReasonNoMoves:
		s.NoMoveEndings++
	case rec.Result.Winner == model.PlayerColorWhite:
		s.HumanWins++
	case rec.Result.Winner == model.PlayerColorBlack:
		s.AutoWins++
	}
}

// LoadGame returns the archived game with the given id.
func (a *Archive) LoadGame(id string) (GameRecord, error) {
	var rec GameRecord
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(gameKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrGameNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, err
}

// ListGames returns every archived game id.
func (a *Archive) ListGames() ([]string, error) {
	ids := []string{}
	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(gameKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return ids, err
}

// LoadStats returns the aggregate stats, empty if nothing was archived yet.
func (a *Archive) LoadStats() (*Stats, error) {
	var stats *Stats
	err := a.db.View(func(txn *badger.Txn) error {
		var err error
		stats, err = loadStats(txn)
		return err
	})
	return stats, err
}

func loadStats(txn *badger.Txn) (*Stats, error) {
	stats := &Stats{}
	item, err := txn.Get([]byte(keyStats))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, stats)
	})
	return stats, err
}
