package ports

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

// InboundMessage is a decoded server-to-client push message.
// Implementations are Hello, PresenceUpdate and Unknown.
type InboundMessage interface {
	isInboundMessage()
}

// Hello announces the heartbeat interval the server expects.
type Hello struct {
	HeartbeatInterval time.Duration
}

// PresenceUpdate carries a presence event for one user.
type PresenceUpdate struct {
	UserID   snowflake.ID
	Presence domain.Presence
}

// Unknown is any message the client does not act on. It is ignored, not rejected.
type Unknown struct {
	Op    int
	Event string
}

func (Hello) isInboundMessage()          {}
func (PresenceUpdate) isInboundMessage() {}
func (Unknown) isInboundMessage()        {}

// PushConn is one established push connection.
type PushConn interface {
	// Receive blocks until the next message arrives or the connection fails.
	Receive() (InboundMessage, error)

	// Subscribe asks the server to deliver presence events for the given users.
	Subscribe(userIDs ...snowflake.ID) error

	// Heartbeat sends a heartbeat ping.
	Heartbeat() error

	// Close closes the connection, unblocking any pending Receive.
	Close() error
}

// PushDialer opens push connections.
type PushDialer interface {
	Dial(ctx context.Context) (PushConn, error)
}
