package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// BannerSource defines the interface for resolving a user's profile banner.
type BannerSource interface {
	// ResolveBanner returns the banner URL, or an empty string if the user has none.
	ResolveBanner(ctx context.Context, userID snowflake.ID) (string, error)
}
