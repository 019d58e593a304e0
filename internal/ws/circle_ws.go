package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"social-service/internal/events"
	"social-service/internal/identity"
	"social-service/internal/observability"
	"social-service/internal/repositories"
)

// CircleWSHandler upgrades GET /ws/circles/:circle_id for circle members.
// Subscribers see membership churn (member_joined, member_left) as it happens.
type CircleWSHandler struct {
	hub        *Hub
	circleRepo repositories.CircleRepository
	verifier   *identity.Verifier
	publisher  events.Publisher
}

func NewCircleWSHandler(hub *Hub, circleRepo repositories.CircleRepository, verifier *identity.Verifier, publisher events.Publisher) *CircleWSHandler {
	return &CircleWSHandler{hub: hub, circleRepo: circleRepo, verifier: verifier, publisher: publisher}
}

func (h *CircleWSHandler) Handle(c *gin.Context) {
	circleID := c.Param("circle_id")

	tracer := otel.Tracer("social-service/ws")
	ctx, span := tracer.Start(c.Request.Context(), "ws.circle.handshake",
		oteltrace.WithAttributes(attribute.String("circle.id", circleID)))
	defer span.End()

	token := bearerOrQueryToken(c)
	principal, err := h.verifier.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	member, err := h.circleRepo.IsMember(ctx, circleID, principal.UID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this circle"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: circle upgrade failed: %v", err)
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
	h.hub.AddCircleClient(circleID, conn, info)
	observability.IncWSActive("circle")
	observability.IncWSEvent("circle", "connect")
	publishWSEvent(h.publisher, "ws_connect", info, map[string]any{
		"kind":      "circle",
		"circle_id": circleID,
	})

	go func() {
		defer func() {
			h.hub.RemoveCircleClient(circleID, conn)
			conn.Close()
			observability.DecWSActive("circle")
			observability.IncWSEvent("circle", "disconnect")
			publishWSEvent(h.publisher, "ws_disconnect", info, map[string]any{
				"kind":      "circle",
				"circle_id": circleID,
			})
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
