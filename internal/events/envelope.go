package events

import "time"

// Routing keys for notification events.
const (
	KeyMessageCreated        = "social.message.created"
	KeyFriendRequestAccepted = "social.friend_request.accepted"
	KeyCircleInvited         = "social.circle.invited"
	KeyWSEvent               = "social.ws.lifecycle"
)

// Envelope is the wire form of every published event.
type Envelope struct {
	SchemaVersion int    `json:"schema_version"`
	Event         string `json:"event"`
	OccurredAt    string `json:"occurred_at"`
	Service       string `json:"service"`
	RequestID     string `json:"request_id,omitempty"`
	Payload       any    `json:"payload"`
}

// NewEnvelope stamps an event payload with schema and timing metadata.
func NewEnvelope(event, requestID string, payload any) Envelope {
	return Envelope{
		SchemaVersion: 1,
		Event:         event,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       "social-service",
		RequestID:     requestID,
		Payload:       payload,
	}
}
