package service

import (
	"sync"

	"github.com/benbeisheim/randchess/internal/model"
	"github.com/benbeisheim/randchess/internal/ws"
	"github.com/gofiber/fiber/v2/log"
)

// Conn is the part of a websocket connection the manager writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Register adds conn for playerID. It reports false, leaving the existing
// connection in place, when the player is already connected.
func (gc *GameConnections) Register(playerID string, conn Conn) bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	if _, exists := gc.connections[playerID]; exists {
		return false
	}
	gc.connections[playerID] = conn
	return true
}

// Unregister drops playerID's connection if it is still conn.
func (gc *GameConnections) Unregister(playerID string, conn Conn) {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	if current, exists := gc.connections[playerID]; exists && current == conn {
		delete(gc.connections, playerID)
	}
}

func (gc *GameConnections) Len() int {
	gc.mu.RLock()
	defer gc.mu.RUnlock()
	return len(gc.connections)
}

// Broadcast sends state to every connection, dropping the ones that fail.
func (gc *GameConnections) Broadcast(state model.GameState) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		log.Errorf("marshal state of game %s: %v", state.ID, err)
		return
	}

	// Get a snapshot of connections so writes happen without the lock
	gc.mu.RLock()
	active := make(map[string]Conn, len(gc.connections))
	for playerID, conn := range gc.connections {
		active[playerID] = conn
	}
	gc.mu.RUnlock()

	for playerID, conn := range active {
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("send state of game %s to player %s: %v", state.ID, playerID, err)
			gc.Unregister(playerID, conn)
			continue
		}
		log.Debugf("sent state of game %s to player %s", state.ID, playerID)
	}
}
