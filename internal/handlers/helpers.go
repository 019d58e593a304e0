package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"social-service/internal/apperror"
	"social-service/internal/observability"
)

// requestID returns the inbound X-Request-ID, minting one when the edge did
// not supply it so event envelopes always correlate.
func requestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// respondError maps a repository error to its HTTP shape. Unexpected errors
// are logged and surface as the fallback message.
func respondError(c *gin.Context, err error, fallback string) {
	status := apperror.Status(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": apperror.Message(err, fallback)})
}

// logPublishFailure records a dropped event. Publishing is best-effort; the
// HTTP response already committed by the time the broker answers.
func logPublishFailure(routingKey string, err error) {
	log.Printf("events: publish %s failed: %v", routingKey, err)
	observability.IncAMQPPublishError()
}
