package ws

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"social-service/internal/events"
	"social-service/internal/identity"
	"social-service/internal/observability"
	"social-service/internal/repositories"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ConversationWSHandler upgrades GET /ws/conversations/:conversation_id into a
// realtime subscription on a conversation room. Clients receive message and
// read events; they never write application frames, the read loop only drains
// control frames and detects disconnects.
type ConversationWSHandler struct {
	hub       *Hub
	convRepo  repositories.ConversationRepository
	verifier  *identity.Verifier
	publisher events.Publisher
}

func NewConversationWSHandler(hub *Hub, convRepo repositories.ConversationRepository, verifier *identity.Verifier, publisher events.Publisher) *ConversationWSHandler {
	return &ConversationWSHandler{hub: hub, convRepo: convRepo, verifier: verifier, publisher: publisher}
}

func (h *ConversationWSHandler) Handle(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	tracer := otel.Tracer("social-service/ws")
	ctx, span := tracer.Start(c.Request.Context(), "ws.conversation.handshake",
		oteltrace.WithAttributes(attribute.String("conversation.id", conversationID)))
	defer span.End()

	token := bearerOrQueryToken(c)
	principal, err := h.verifier.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conv, err := h.convRepo.GetConversation(ctx, conversationID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}
	if !conv.HasParticipant(principal.UID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this conversation"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: conversation upgrade failed: %v", err)
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      principal.UID,
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now().UTC(),
	}
	h.hub.AddConversationClient(conversationID, conn, info)
	observability.IncWSActive("conversation")
	observability.IncWSEvent("conversation", "connect")
	publishWSEvent(h.publisher, "ws_connect", info, map[string]any{
		"kind":            "conversation",
		"conversation_id": conversationID,
	})

	go func() {
		defer func() {
			h.hub.RemoveConversationClient(conversationID, conn)
			conn.Close()
			observability.DecWSActive("conversation")
			observability.IncWSEvent("conversation", "disconnect")
			publishWSEvent(h.publisher, "ws_disconnect", info, map[string]any{
				"kind":            "conversation",
				"conversation_id": conversationID,
			})
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func bearerOrQueryToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && header[:7] == "Bearer " {
		return header[7:]
	}
	return c.Query("token")
}

func publishWSEvent(publisher events.Publisher, event string, info ConnInfo, payload map[string]any) {
	if publisher == nil {
		return
	}
	payload["conn_id"] = info.ConnID
	payload["user_id"] = info.UserID
	payload["ip"] = info.IP
	payload["trace_id"] = info.TraceID
	env := events.NewEnvelope(event, info.RequestID, payload)
	if err := publisher.Publish(context.Background(), events.KeyWSEvent, env); err != nil {
		log.Printf("ws: publish %s failed: %v", event, err)
	}
}
