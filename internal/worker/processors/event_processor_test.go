package processors

import (
	"context"
	"errors"
	"testing"

	"feedgen/internal/events"
	"feedgen/internal/logger"
	"feedgen/internal/worker/processors/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessDispatchesToBus(t *testing.T) {
	bus := events.NewBus()
	var products []events.ProductChanged
	var comments []events.CommentChanged
	bus.OnProductChanged(func(ctx context.Context, e events.ProductChanged) error {
		products = append(products, e)
		return nil
	})
	bus.OnCommentChanged(func(ctx context.Context, e events.CommentChanged) error {
		comments = append(comments, e)
		return nil
	})

	ep := NewEventProcessor(bus, logger.Discard())
	ctx := context.Background()

	require.NoError(t, ep.Process(ctx, events.Message{ID: "e1", Type: events.ProductDeleted, ProductID: 5}))
	require.NoError(t, ep.Process(ctx, events.Message{ID: "e2", Type: events.CommentUpdated, CommentID: 9, ProductID: 5}))

	require.Len(t, products, 1)
	assert.Equal(t, "e1", products[0].ID)
	assert.Equal(t, int64(5), products[0].ProductID)
	require.Len(t, comments, 1)
	assert.Equal(t, int64(9), comments[0].CommentID)
}

func TestProcessRejectsInvalidEvents(t *testing.T) {
	bus := events.NewBus()
	called := false
	bus.OnProductChanged(func(ctx context.Context, e events.ProductChanged) error {
		called = true
		return nil
	})
	ep := NewEventProcessor(bus, logger.Discard())

	tests := []struct {
		name  string
		event events.Message
	}{
		{"unknown type", events.Message{Type: "order.created", ProductID: 1}},
		{"product without id", events.Message{Type: events.ProductUpdated}},
		{"comment without id", events.Message{Type: events.CommentCreated, ProductID: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ep.Process(context.Background(), tt.event)
			assert.ErrorIs(t, err, validation.ErrInvalidEvent)
		})
	}
	assert.False(t, called)
}

func TestProcessReturnsHandlerError(t *testing.T) {
	bus := events.NewBus()
	boom := errors.New("rebuild failed")
	bus.OnProductChanged(func(ctx context.Context, e events.ProductChanged) error {
		return boom
	})

	err := NewEventProcessor(bus, logger.Discard()).Process(context.Background(), events.Message{Type: events.ProductCreated, ProductID: 3})
	assert.ErrorIs(t, err, boom)
}
