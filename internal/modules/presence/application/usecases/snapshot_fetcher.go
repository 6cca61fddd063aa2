package usecases

import (
	"context"
	"errors"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/application/ports"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

// BannerTrigger starts a banner resolution without waiting for it.
type BannerTrigger interface {
	Trigger()
}

// SnapshotFetcher performs the request/response lookup that produces the initial snapshot.
type SnapshotFetcher struct {
	userID  snowflake.ID
	source  ports.SnapshotSource
	store   domain.SnapshotStore
	banners *BannerCache
	trigger BannerTrigger
	badges  []string
}

// NewSnapshotFetcher creates a new SnapshotFetcher.
// trigger may be nil, in which case no enrichment is started after a publish.
func NewSnapshotFetcher(
	userID snowflake.ID,
	source ports.SnapshotSource,
	store domain.SnapshotStore,
	banners *BannerCache,
	trigger BannerTrigger,
	badges []string,
) *SnapshotFetcher {
	return &SnapshotFetcher{
		userID:  userID,
		source:  source,
		store:   store,
		banners: banners,
		trigger: trigger,
		badges:  badges,
	}
}

// FetchInitial fetches the user's presence and publishes it to the store immediately,
// without waiting for a banner. On failure the store keeps its prior value and the
// error, always wrapping domain.ErrUpstream, is returned to the caller. No retry is made.
func (f *SnapshotFetcher) FetchInitial(ctx context.Context) (domain.Snapshot, error) {
	presence, err := f.source.FetchPresence(ctx, f.userID)
	if err != nil {
		if !errors.Is(err, domain.ErrUpstream) {
			err = &domain.UpstreamError{Op: "fetch presence", Message: err.Error()}
		}
		return domain.Snapshot{}, err
	}

	snapshot := domain.NewSnapshot(presence, f.badges)
	if snapshot.ID == 0 {
		snapshot.ID = f.userID
	}

	var published domain.Snapshot
	f.store.Update(func(current domain.Snapshot, ok bool) (domain.Snapshot, bool) {
		published = snapshot
		// Read under the store lock: an enrichment that swapped the cache before this point
		// is seen here, and one that swaps after it splices into the published snapshot.
		published.BannerURL = f.banners.Get()
		if ok && !published.HasBanner() {
			published.BannerURL = current.BannerURL
		}
		return published, true
	})

	slog.Info("published presence snapshot",
		"user_id", f.userID,
		"status", published.Status,
		"activities", len(published.Activities),
	)

	if f.trigger != nil {
		f.trigger.Trigger()
	}

	return published, nil
}
