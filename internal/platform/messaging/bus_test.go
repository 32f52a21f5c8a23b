package messaging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicon/internal/shared/events"
)

func quietBus(buffer int) *Bus {
	return NewBus(buffer, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBusDeliversToSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := quietBus(4)

	var (
		mu       sync.Mutex
		received []string
	)
	bus.Subscribe(ctx, "governance.entry.published", "search-index", func(_ context.Context, event events.Envelope) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, event.EventID)
		return errors.New("handler errors are logged only")
	})

	require.NoError(t, bus.Publish(ctx, " governance.entry.published ", events.Envelope{EventID: "evt-1"}))
	require.NoError(t, bus.Publish(ctx, "governance.entry.published", events.Envelope{EventID: "evt-2"}))
	require.NoError(t, bus.Publish(ctx, "governance.entry.flagged", events.Envelope{EventID: "evt-3"}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.Equal(t, []string{"evt-1", "evt-2"}, received)
	mu.Unlock()
}

func TestBusRemovesSubscriberOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bus := quietBus(1)
	bus.Subscribe(ctx, "topic", "group", func(context.Context, events.Envelope) error { return nil })
	assert.Equal(t, 1, bus.SubscriberCount("topic"))

	cancel()
	require.Eventually(t, func() bool {
		return bus.SubscriberCount("topic") == 0
	}, time.Second, 10*time.Millisecond)
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	bus := quietBus(0)
	assert.NoError(t, bus.Publish(context.Background(), "nobody", events.Envelope{EventID: "evt"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, bus.Publish(ctx, "nobody", events.Envelope{EventID: "evt"}), context.Canceled)
}
