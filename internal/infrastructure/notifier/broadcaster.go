package notifier

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

// Broadcaster fans sync events out to in-process subscribers. Publish never
// blocks: an event is dropped for a subscriber whose buffer is full.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[int]chan entities.MeetingsSynced
	nextID int
	closed bool
	logger *zap.Logger
}

// NewBroadcaster creates a broadcaster
func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		subs:   make(map[int]chan entities.MeetingsSynced),
		logger: logger,
	}
}

// Subscribe registers a subscriber with the given buffer size. The returned
// cancel func unsubscribes and closes the channel.
func (b *Broadcaster) Subscribe(buffer int) (<-chan entities.MeetingsSynced, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan entities.MeetingsSynced, buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers event to every subscriber
func (b *Broadcaster) Publish(_ context.Context, event entities.MeetingsSynced) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.logger.Warn("subscriber buffer full, dropping sync event",
				zap.Int("subscriber", id),
				zap.String("account_id", event.AccountID),
				zap.String("event_id", event.EventID),
			)
		}
	}
	return nil
}

// Close unsubscribes and closes every subscriber channel
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
