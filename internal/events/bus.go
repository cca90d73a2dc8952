// Package events is a small synchronous dispatcher for catalog mutations.
package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type names a catalog mutation.
type Type string

const (
	ProductCreated Type = "product.created"
	ProductUpdated Type = "product.updated"
	ProductDeleted Type = "product.deleted"
	CommentCreated Type = "comment.created"
	CommentUpdated Type = "comment.updated"
	CommentDeleted Type = "comment.deleted"
)

// IsProduct reports whether t is a product lifecycle event.
func (t Type) IsProduct() bool {
	return t == ProductCreated || t == ProductUpdated || t == ProductDeleted
}

// IsComment reports whether t is a review/comment lifecycle event.
func (t Type) IsComment() bool {
	return t == CommentCreated || t == CommentUpdated || t == CommentDeleted
}

type ProductChanged struct {
	ID         string
	Type       Type
	ProductID  int64
	OccurredAt time.Time
}

type CommentChanged struct {
	ID         string
	Type       Type
	CommentID  int64
	ProductID  int64
	OccurredAt time.Time
}

type (
	ProductHandler func(ctx context.Context, e ProductChanged) error
	CommentHandler func(ctx context.Context, e CommentChanged) error
)

// Bus invokes handlers synchronously in registration order. Every handler
// runs even when an earlier one fails.
type Bus struct {
	mu       sync.RWMutex
	products []ProductHandler
	comments []CommentHandler
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) OnProductChanged(h ProductHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.products = append(b.products, h)
}

func (b *Bus) OnCommentChanged(h CommentHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.comments = append(b.comments, h)
}

// PublishProductChanged fills in ID and OccurredAt when unset.
func (b *Bus) PublishProductChanged(ctx context.Context, e ProductChanged) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	b.mu.RLock()
	handlers := append([]ProductHandler(nil), b.products...)
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishCommentChanged fills in ID and OccurredAt when unset.
func (b *Bus) PublishCommentChanged(ctx context.Context, e CommentChanged) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	b.mu.RLock()
	handlers := append([]CommentHandler(nil), b.comments...)
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
