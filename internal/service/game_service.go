package service

import (
	"fmt"

	"github.com/benbeisheim/randchess/internal/model"
	"github.com/benbeisheim/randchess/internal/store"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

// CreateGame starts a game in which playerID plays White against the
// automatic opponent.
func (gs *GameService) CreateGame(playerID string) (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID, playerID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

// HandleMove parses squares such as "e2" and plays the move.
func (gs *GameService) HandleMove(gameID string, playerID string, from, to string) (model.GameState, error) {
	fromPos, err := model.ParseSquare(from)
	if err != nil {
		return model.GameState{}, err
	}
	toPos, err := model.ParseSquare(to)
	if err != nil {
		return model.GameState{}, err
	}
	return gs.gameManager.MakeMove(gameID, playerID, fromPos, toPos)
}

func (gs *GameService) ArchivedGame(gameID string) (store.GameRecord, error) {
	return gs.gameManager.ArchivedGame(gameID)
}

func (gs *GameService) Stats() (*store.Stats, error) {
	return gs.gameManager.Stats()
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}
