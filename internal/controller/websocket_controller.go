package controller

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/benbeisheim/randchess/internal/service"
	"github.com/benbeisheim/randchess/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// lockedConn serialises writes; broadcasts from HTTP moves and error replies
// from the read loop may otherwise write at the same time.
type lockedConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (lc *lockedConn) WriteJSON(v interface{}) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.Conn.WriteJSON(v)
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(conn *websocket.Conn) {
	gameID, _ := conn.Locals("wsGameID").(string)
	playerID, _ := conn.Locals("wsPlayerID").(string)
	c := &lockedConn{Conn: conn}

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Warnf("register connection for player %s in game %s: %v", playerID, gameID, err)
		wsc.sendError(c, err.Error())
		c.Close()
		return
	}

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("read error: %v", err)
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Debugf("parse error: %v", err)
			wsc.sendError(c, "malformed message")
			continue
		}

		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debugf("handle error: %v", err)
			wsc.sendError(c, err.Error())
		}
	}

	// Clean up when connection closes
	wsc.gameService.UnregisterConnection(gameID, playerID, c)
}

// Handle different types of incoming messages
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		// the resulting state reaches this connection through the broadcast
		_, err := wsc.gameService.HandleMove(gameID, playerID, move.From, move.To)
		return err

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// Helper method to send error messages
func (wsc *WebSocketController) sendError(c *lockedConn, errorMsg string) {
	msg, err := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: errorMsg})
	if err != nil {
		return
	}
	if err := c.WriteJSON(msg); err != nil {
		log.Debugf("send error message: %v", err)
	}
}
