package controller

import (
	"errors"

	"github.com/benbeisheim/randchess/internal/model"
	"github.com/benbeisheim/randchess/internal/service"
	"github.com/benbeisheim/randchess/internal/store"
	"github.com/benbeisheim/randchess/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// statusFor maps service and rule errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, store.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrNoArchive):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, service.ErrNotYourTurn), errors.Is(err, model.ErrAutoSideTurn), errors.Is(err, model.ErrGameOver):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrBadSquare),
		errors.Is(err, model.ErrOutOfBounds),
		errors.Is(err, model.ErrEmptySource),
		errors.Is(err, model.ErrWrongOwner),
		errors.Is(err, model.ErrIllegalShape):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

func errorResponse(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	gameID, err := gc.gameService.CreateGame(playerID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
		"color":   model.PlayerColorWhite,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	var move ws.MovePayload
	if err := c.BodyParser(&move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "body must be {\"from\": \"e2\", \"to\": \"e4\"}",
		})
	}

	gameState, err := gc.gameService.HandleMove(gameID, playerID, move.From, move.To)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) GetArchivedGame(c *fiber.Ctx) error {
	rec, err := gc.gameService.ArchivedGame(c.Params("gameId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(rec)
}

func (gc *GameController) GetStats(c *fiber.Ctx) error {
	stats, err := gc.gameService.Stats()
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(stats)
}
