package ports

import "github.com/sglre6355/sgrpresence/internal/modules/presence/domain"

// EventPublisher defines the interface for publishing events asynchronously.
type EventPublisher interface {
	PublishSnapshotChanged(event domain.SnapshotChangedEvent)
	PublishConnectionStateChanged(event domain.ConnectionStateChangedEvent)
}
