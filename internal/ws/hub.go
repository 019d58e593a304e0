package ws

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"social-service/internal/models"
	"social-service/internal/observability"
)

// client pairs a connection's metadata with the write lock serializing frames
// onto it. gorilla/websocket connections support one concurrent writer only,
// and broadcasts run on whatever request goroutine triggered them.
type client struct {
	info    ConnInfo
	writeMu sync.Mutex
}

func (c *client) writeJSON(conn *websocket.Conn, v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(v)
}

// Hub fans realtime events out to subscribed websocket clients. Rooms are
// keyed by conversation or circle ID; a client may sit in several rooms at
// once, one connection per room.
type Hub struct {
	mu            sync.RWMutex
	conversations map[string]map[*websocket.Conn]*client
	circles       map[string]map[*websocket.Conn]*client
}

func NewHub() *Hub {
	return &Hub{
		conversations: make(map[string]map[*websocket.Conn]*client),
		circles:       make(map[string]map[*websocket.Conn]*client),
	}
}

func (h *Hub) AddConversationClient(conversationID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conversations[conversationID] == nil {
		h.conversations[conversationID] = make(map[*websocket.Conn]*client)
	}
	h.conversations[conversationID][conn] = &client{info: info}
}

func (h *Hub) RemoveConversationClient(conversationID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.conversations[conversationID]; ok {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(h.conversations, conversationID)
		}
	}
}

func (h *Hub) AddCircleClient(circleID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.circles[circleID] == nil {
		h.circles[circleID] = make(map[*websocket.Conn]*client)
	}
	h.circles[circleID][conn] = &client{info: info}
}

func (h *Hub) RemoveCircleClient(circleID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.circles[circleID]; ok {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(h.circles, circleID)
		}
	}
}

// ConversationClients reports how many clients are attached to a conversation
// room. Used by tests and the health handler.
func (h *Hub) ConversationClients(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conversations[conversationID])
}

func (h *Hub) CircleClients(circleID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.circles[circleID])
}

// BroadcastMessage pushes a freshly persisted message to every client in the
// conversation room, including the sender's other devices.
func (h *Hub) BroadcastMessage(conversationID string, msg models.Message) {
	h.broadcastConversation(conversationID, models.ConversationEvent{
		Type:    "message",
		Message: &msg,
	})
}

// BroadcastRead tells the room that uid has caught up on the conversation.
func (h *Hub) BroadcastRead(conversationID, uid string) {
	h.broadcastConversation(conversationID, models.ConversationEvent{
		Type:   "read",
		UserID: uid,
	})
}

func (h *Hub) broadcastConversation(conversationID string, event models.ConversationEvent) {
	h.mu.RLock()
	clients := make(map[*websocket.Conn]*client, len(h.conversations[conversationID]))
	for conn, cl := range h.conversations[conversationID] {
		clients[conn] = cl
	}
	h.mu.RUnlock()

	for conn, cl := range clients {
		if err := cl.writeJSON(conn, event); err != nil {
			log.Printf("ws: conversation write failed conn=%s user=%s: %v", cl.info.ConnID, cl.info.UserID, err)
			observability.IncWSEvent("conversation", "write_error")
			conn.Close()
			h.RemoveConversationClient(conversationID, conn)
			continue
		}
		observability.IncWSEvent("conversation", event.Type)
	}
}

func (h *Hub) BroadcastCircleEvent(circleID string, event models.CircleEvent) {
	h.mu.RLock()
	clients := make(map[*websocket.Conn]*client, len(h.circles[circleID]))
	for conn, cl := range h.circles[circleID] {
		clients[conn] = cl
	}
	h.mu.RUnlock()

	for conn, cl := range clients {
		if err := cl.writeJSON(conn, event); err != nil {
			log.Printf("ws: circle write failed conn=%s user=%s: %v", cl.info.ConnID, cl.info.UserID, err)
			observability.IncWSEvent("circle", "write_error")
			conn.Close()
			h.RemoveCircleClient(circleID, conn)
			continue
		}
		observability.IncWSEvent("circle", event.Type)
	}
}
