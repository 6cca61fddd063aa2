package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

// SnapshotSource defines the interface for the request/response presence lookup.
type SnapshotSource interface {
	// FetchPresence returns the current presence of the user.
	// Failures are reported as *domain.UpstreamError.
	FetchPresence(ctx context.Context, userID snowflake.ID) (domain.Presence, error)
}
