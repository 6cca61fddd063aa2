package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sglre6355/sgrpresence/internal/modules/presence/application/ports"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

// ChannelEventBus delivers presence events to handlers on dispatcher goroutines,
// so slow consumers never block the store or the push channel.
type ChannelEventBus struct {
	snapshotChanged chan domain.SnapshotChangedEvent
	connectionState chan domain.ConnectionStateChangedEvent

	snapshotChangedHandlers []func(context.Context, domain.SnapshotChangedEvent)
	connectionStateHandlers []func(context.Context, domain.ConnectionStateChangedEvent)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given buffer size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := &ChannelEventBus{
		snapshotChanged: make(chan domain.SnapshotChangedEvent, bufferSize),
		connectionState: make(chan domain.ConnectionStateChangedEvent, bufferSize),
		ctx:             ctx,
		cancel:          cancel,
	}

	bus.wg.Add(2)
	go dispatch(bus, bus.snapshotChanged, func() []func(context.Context, domain.SnapshotChangedEvent) {
		return bus.snapshotChangedHandlers
	})
	go dispatch(bus, bus.connectionState, func() []func(context.Context, domain.ConnectionStateChangedEvent) {
		return bus.connectionStateHandlers
	})

	return bus
}

// dispatch delivers events from ch to the handlers returned by handlers until the bus closes.
func dispatch[E any](
	b *ChannelEventBus,
	ch <-chan E,
	handlers func() []func(context.Context, E),
) {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			b.mu.RLock()
			hs := handlers()
			b.mu.RUnlock()
			for _, handler := range hs {
				handler(b.ctx, event)
			}
		}
	}
}

// publish sends event on ch without blocking. The event is dropped with a warning
// if the buffer is full.
func publish[E any](b *ChannelEventBus, ch chan<- E, event E, eventType string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", eventType)
		return
	}

	select {
	case ch <- event:
		slog.Debug("published event", "type", eventType)
	default:
		slog.Warn("event buffer full, dropping event", "type", eventType)
	}
}

// PublishSnapshotChanged publishes a SnapshotChangedEvent.
func (b *ChannelEventBus) PublishSnapshotChanged(event domain.SnapshotChangedEvent) {
	publish(b, b.snapshotChanged, event, "SnapshotChanged")
}

// PublishConnectionStateChanged publishes a ConnectionStateChangedEvent.
func (b *ChannelEventBus) PublishConnectionStateChanged(event domain.ConnectionStateChangedEvent) {
	publish(b, b.connectionState, event, "ConnectionStateChanged")
}

// OnSnapshotChanged registers a handler for SnapshotChangedEvent.
func (b *ChannelEventBus) OnSnapshotChanged(
	handler func(context.Context, domain.SnapshotChangedEvent),
) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshotChangedHandlers = append(b.snapshotChangedHandlers, handler)
}

// OnConnectionStateChanged registers a handler for ConnectionStateChangedEvent.
func (b *ChannelEventBus) OnConnectionStateChanged(
	handler func(context.Context, domain.ConnectionStateChangedEvent),
) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connectionStateHandlers = append(b.connectionStateHandlers, handler)
}

// Close stops the dispatchers. Events still buffered are discarded.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()

	close(b.snapshotChanged)
	close(b.connectionState)

	b.wg.Wait()

	slog.Debug("channel event bus closed")
}
