// Package websocket pushes job lifecycle events to subscribed UIs so they
// re-fetch affected records after every mutation instead of trusting
// optimistic local state.
package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// JobEventType identifies what changed on a job.
type JobEventType string

const (
	EventApplicationSubmitted JobEventType = "application.submitted"
	EventApplicationAccepted  JobEventType = "application.accepted"
	EventApplicationDeclined  JobEventType = "application.declined"
	EventApplicationRestored  JobEventType = "application.restored"
	EventApplicationCompleted JobEventType = "application.completed"
	EventBadgeArtReady        JobEventType = "badge.art_ready"
)

// JobEvent is the message broadcast to a job's subscribers.
type JobEvent struct {
	Type          JobEventType `json:"type"`
	JobID         string       `json:"jobId"`
	ApplicationID string       `json:"applicationId,omitempty"`
	BadgeID       string       `json:"badgeId,omitempty"`
}

// Client represents a WebSocket client
type Client struct {
	JobID string
	Conn  *websocket.Conn
	Send  chan []byte
}

// Hub maintains active WebSocket connections
type Hub struct {
	// Clients grouped by job ID
	clients map[string]map[*Client]bool

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Broadcast messages to job subscribers
	broadcast chan *broadcastMessage

	mu sync.RWMutex
}

type broadcastMessage struct {
	jobID   string
	message []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMessage, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.JobID] == nil {
				h.clients[client.JobID] = make(map[*Client]bool)
			}
			h.clients[client.JobID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.JobID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.JobID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			if clients, ok := h.clients[msg.jobID]; ok {
				for client := range clients {
					select {
					case client.Send <- msg.message:
					default:
						close(client.Send)
						delete(clients, client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastJobEvent sends an event to all subscribers of a job.
func (h *Hub) BroadcastJobEvent(event JobEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal job event: %v", err)
		return
	}
	select {
	case h.broadcast <- &broadcastMessage{jobID: event.JobID, message: data}:
	default:
		log.Printf("Event channel full, dropping %s for job %s", event.Type, event.JobID)
	}
}

// HandleConnection manages a single client connection for a job.
func (h *Hub) HandleConnection(conn *websocket.Conn, jobID string) {
	client := &Client{
		JobID: jobID,
		Conn:  conn,
		Send:  make(chan []byte, 16),
	}
	h.register <- client
	defer func() {
		h.unregister <- client
		conn.Close()
	}()

	go func() {
		for msg := range client.Send {
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	// Read loop exists only to observe disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
