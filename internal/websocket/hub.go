package websocket

import (
	"encoding/json"
	"sync"

	"github.com/odvhub/odvhub-backend/pkg/logger"
)

// Event is a review-queue update pushed to connected staff dashboards.
type Event struct {
	Type          string `json:"type"` // application_submitted, application_reviewed
	ApplicationID uint   `json:"application_id"`
	Code          string `json:"code"`
	Status        string `json:"status"`
}

// Hub tracks connected staff clients and fans events out to all of them.
// Multiple sessions per user are supported.
type Hub struct {
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 256),
	}
}

// Run processes register/unregister/broadcast events until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": len(h.clients[client.UserID]),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clientList, ok := h.clients[client.UserID]; ok {
				newList := make([]*Client, 0, len(clientList))
				for _, c := range clientList {
					if c != client {
						newList = append(newList, c)
					}
				}
				if len(newList) == 0 {
					delete(h.clients, client.UserID)
				} else {
					h.clients[client.UserID] = newList
				}
				close(client.Send)
			}
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"user_id": client.UserID,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, clientList := range h.clients {
				for _, client := range clientList {
					select {
					case client.Send <- message:
					default:
						// slow consumer, drop the event for this session
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast pushes an event to every connected staff session. Marshal errors
// are logged and swallowed: the feed is best effort.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal websocket event", err, map[string]interface{}{
			"type": event.Type,
		})
		return
	}
	select {
	case h.broadcast <- data:
	default:
		logger.Warn("WebSocket broadcast queue full, dropping event", map[string]interface{}{
			"type": event.Type,
		})
	}
}

// Register enqueues a client for registration.
func (h *Hub) Register(client *Client) {
	h.register <- client
}
