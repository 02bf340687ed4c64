package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"campusmarket/pkg/logger"
)

// Manager keeps track of open subscription connections so they can be closed
// on shutdown.
type Manager struct {
	clients map[*Client]struct{}
	mutex   sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients: make(map[*Client]struct{}),
	}
}

func (m *Manager) register(client *Client) {
	m.mutex.Lock()
	m.clients[client] = struct{}{}
	m.mutex.Unlock()
	logger.Debug("Client registered: user=%s kind=%s", client.UserID, client.Kind)
}

func (m *Manager) unregister(client *Client) {
	m.mutex.Lock()
	delete(m.clients, client)
	m.mutex.Unlock()
	logger.Debug("Client unregistered: user=%s kind=%s", client.UserID, client.Kind)
}

// Count returns the number of open connections.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// CloseAll sends a going-away frame to every client and ends its stream.
func (m *Manager) CloseAll() {
	m.mutex.RLock()
	clients := make([]*Client, 0, len(m.clients))
	for client := range m.clients {
		clients = append(clients, client)
	}
	m.mutex.RUnlock()

	for _, client := range clients {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		_ = client.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		client.close()
	}
}
