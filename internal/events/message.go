package events

import (
	"context"
	"fmt"
	"time"
)

// Message is the JSON form of a catalog event on the Kafka topic.
type Message struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	ProductID  int64     `json:"product_id"`
	CommentID  int64     `json:"comment_id,omitempty"`
	OccurredAt time.Time `json:"timestamp"`
}

// Publish dispatches m on the bus as a product or comment event.
func (m Message) Publish(ctx context.Context, bus *Bus) error {
	switch {
	case m.Type.IsProduct():
		return bus.PublishProductChanged(ctx, ProductChanged{
			ID:         m.ID,
			Type:       m.Type,
			ProductID:  m.ProductID,
			OccurredAt: m.OccurredAt,
		})
	case m.Type.IsComment():
		return bus.PublishCommentChanged(ctx, CommentChanged{
			ID:         m.ID,
			Type:       m.Type,
			CommentID:  m.CommentID,
			ProductID:  m.ProductID,
			OccurredAt: m.OccurredAt,
		})
	}
	return fmt.Errorf("unknown event type %q", m.Type)
}
