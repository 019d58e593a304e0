package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"social-service/internal/events"
)

// HealthHandler reports process liveness and dependency readiness.
type HealthHandler struct {
	db        *sqlx.DB
	publisher events.Publisher
}

func NewHealthHandler(db *sqlx.DB, publisher events.Publisher) *HealthHandler {
	return &HealthHandler{db: db, publisher: publisher}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"events": events.PublisherMode(h.publisher),
	})
}
