package sse

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
)

type Event string

const (
	EventReviewSessionCreated   Event = "ReviewSessionCreated"
	EventReviewSessionApproved  Event = "ReviewSessionApproved"
	EventReviewSessionCancelled Event = "ReviewSessionCancelled"
)

// Message is one review lifecycle notification, addressed to a user.
type Message struct {
	UserID uuid.UUID `json:"user_id"`
	Event  Event     `json:"event"`
	Data   any       `json:"data,omitempty"`
}

// Client is one connected event-stream subscriber.
type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Outbound chan Message
}

// Hub fans review events out to each user's connected clients.
type Hub struct {
	mu      sync.RWMutex
	log     *logger.Logger
	clients map[uuid.UUID]map[*Client]bool
}

func NewHub(baseLog *logger.Logger) *Hub {
	return &Hub{
		log:     baseLog.With("component", "SSEHub"),
		clients: make(map[uuid.UUID]map[*Client]bool),
	}
}

func (h *Hub) Subscribe(userID uuid.UUID) *Client {
	c := &Client{
		ID:       uuid.New(),
		UserID:   userID,
		Outbound: make(chan Message, 16),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]bool)
	}
	h.clients[userID][c] = true
	return c
}

func (h *Hub) Unsubscribe(c *Client) {
	if c == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.UserID]; ok {
		if set[c] {
			delete(set, c)
			close(c.Outbound)
		}
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
}

// Publish delivers a message to every client of the addressed user.
// Slow clients are skipped rather than blocking the hub.
func (h *Hub) Publish(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[msg.UserID] {
		select {
		case c.Outbound <- msg:
		default:
			h.log.Warn("dropping event for slow client", "client_id", c.ID, "event", msg.Event)
		}
	}
}
