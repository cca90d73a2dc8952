package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"feedgen/internal/events"
	"feedgen/internal/logger"
	"feedgen/internal/worker/processors"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	mu        sync.Mutex
	messages  chan kafka.Message
	committed []int64
	closed    bool
}

func newFakeReader(values ...string) *fakeReader {
	r := &fakeReader{messages: make(chan kafka.Message, len(values))}
	for i, v := range values {
		r.messages <- kafka.Message{Offset: int64(i), Value: []byte(v)}
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.messages:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func (r *fakeReader) Committed() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func TestWorkerDispatchesAndCommits(t *testing.T) {
	reader := newFakeReader(
		`{"id":"a","type":"product.updated","product_id":7}`,
		`not json`,
		`{"id":"b","type":"order.created","product_id":1}`,
		`{"id":"c","type":"comment.created","product_id":7,"comment_id":3}`,
	)

	bus := events.NewBus()
	var mu sync.Mutex
	var seen []string
	bus.OnProductChanged(func(ctx context.Context, e events.ProductChanged) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.ID)
		return nil
	})
	bus.OnCommentChanged(func(ctx context.Context, e events.CommentChanged) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.ID)
		return nil
	})

	log := logger.Discard()
	w := NewWithReader(reader, processors.NewEventProcessor(bus, log), log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool {
		return len(reader.Committed()) == 4
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "c"}, seen)
	assert.Equal(t, []int64{0, 1, 2, 3}, reader.Committed())

	require.NoError(t, w.Stop())
	assert.True(t, reader.closed)
}
