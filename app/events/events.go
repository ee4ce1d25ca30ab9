package events

import (
	"context"
	"time"
)

// Catalog change topics.
const (
	CategoryCreated = "category.created"
	CategoryUpdated = "category.updated"
	CategoryDeleted = "category.deleted"
	ProductCreated  = "product.created"
	ProductUpdated  = "product.updated"
	ProductDeleted  = "product.deleted"
	ImageAdded      = "product.image.added"
	ImageRemoved    = "product.image.removed"
	ImagePrimary    = "product.image.primary"
)

// Event is the JSON envelope written to every topic.
type Event struct {
	Type       string    `json:"type"`
	ID         uint      `json:"id"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }

// New returns an event constructor stamped with the current time.
func New(eventType string, id uint, data any) Event {
	return Event{
		Type:       eventType,
		ID:         id,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}
