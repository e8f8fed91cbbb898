package core

import "context"

// Event types pushed to connected clients.
const (
	EventForumMessage = "forum.message"
	EventMessageNew   = "message.new"
	EventMessageRead  = "message.read"
)

type (
	Event struct {
		Type       string      `json:"type"`
		Recipients []string    `json:"recipients,omitempty"` // user IDs
		Payload    interface{} `json:"payload"`
	}

	// EventPublisher delivers events to the connected clients of Event.Recipients.
	// Delivery is best effort: offline users simply miss the event.
	EventPublisher interface {
		Publish(ctx context.Context, evt Event) error
	}
)

type noopPublisher struct{}

// NoopPublisher drops every event.
var NoopPublisher EventPublisher = noopPublisher{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }
