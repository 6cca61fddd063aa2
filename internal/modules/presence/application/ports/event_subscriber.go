package ports

import (
	"context"

	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

// EventSubscriber defines the interface for subscribing to events.
// Handlers are registered with the subscriber and invoked when events occur.
type EventSubscriber interface {
	OnSnapshotChanged(handler func(context.Context, domain.SnapshotChangedEvent))
	OnConnectionStateChanged(handler func(context.Context, domain.ConnectionStateChangedEvent))
}
