package validation

import (
	"testing"

	"feedgen/internal/events"
	"feedgen/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestValidateEvent(t *testing.T) {
	v := New(logger.Discard())

	tests := []struct {
		name    string
		msg     events.Message
		wantErr bool
	}{
		{"product", events.Message{Type: events.ProductUpdated, ProductID: 1}, false},
		{"product without id", events.Message{Type: events.ProductCreated}, true},
		{"comment", events.Message{Type: events.CommentCreated, CommentID: 3, ProductID: 1}, false},
		{"comment without id", events.Message{Type: events.CommentDeleted, ProductID: 1}, true},
		{"unknown type", events.Message{Type: "order.created", ProductID: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateEvent(tt.msg)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEvent)
				return
			}
			assert.NoError(t, err)
		})
	}
}
