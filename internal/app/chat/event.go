/*
Package chat contains the real-time gateway: live connection management and
best-effort message relay between authenticated clients.

This file defines the wire protocol. Every frame on a connection is an Event
envelope; payload shapes are fixed per event type.
*/
package chat

import (
	"time"

	"github.com/google/uuid"

	"dmchat/internal/app/message"
	"dmchat/internal/app/user"
)

// EventType identifies the kind of frame carried by an Event envelope.
type EventType string

const (
	// TypeInit is sent to a client right after its connection is admitted.
	TypeInit EventType = "INIT"

	// TypeMessage carries a chat message. Inbound it is a relay request;
	// outbound it is a Message-shaped payload with the sender expanded.
	TypeMessage EventType = "MESSAGE"

	// TypeUserOnline announces that a user's connection was admitted.
	TypeUserOnline EventType = "USER_ONLINE"

	// TypeUserOffline announces that a user's connection closed.
	TypeUserOffline EventType = "USER_OFFLINE"

	// TypeError carries a server-side error to one client.
	TypeError EventType = "ERROR"
)

// Event is the envelope for every frame exchanged over a connection.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// NewEvent constructs an Event envelope with a fresh id and server timestamp.
func NewEvent(eventType EventType, payload any) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// InitPayload is the first frame a client receives after admission: its own
// identity plus the ids of currently online users (simple presence flags).
type InitPayload struct {
	User          user.Summary `json:"user"`
	OnlineUserIDs []string     `json:"onlineUserIds"`
}

// InboundMessagePayload is what a client submits for relay. It is independent
// of, and in addition to, the durable REST write.
type InboundMessagePayload struct {
	Receiver string              `json:"receiver"`
	Content  string              `json:"content,omitempty"`
	File     *message.Attachment `json:"file,omitempty"`
}

// PresencePayload identifies the user behind a USER_ONLINE or USER_OFFLINE event.
type PresencePayload struct {
	UserID string `json:"userId"`
}

// ErrorPayload carries an application error code and message to one client.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
