package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/application/ports"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

// DefaultBannerRefreshInterval is the period of the banner poll.
const DefaultBannerRefreshInterval = 30 * time.Second

// BannerCache holds the last successfully resolved banner URL.
type BannerCache struct {
	mu  sync.RWMutex
	url string
}

// NewBannerCache creates an empty BannerCache.
func NewBannerCache() *BannerCache {
	return &BannerCache{}
}

// Get returns the cached banner URL, or an empty string if none is known.
func (c *BannerCache) Get() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.url
}

// swap stores url and reports whether it differed from the cached value.
func (c *BannerCache) swap(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.url == url {
		return false
	}
	c.url = url
	return true
}

// BannerEnricher periodically resolves the user's banner and splices it into the snapshot.
// Failures are logged and swallowed; the banner stays at its last known value.
type BannerEnricher struct {
	userID    snowflake.ID
	source    ports.BannerSource
	store     domain.SnapshotStore
	cache     *BannerCache
	scheduler ports.Scheduler
	interval  time.Duration

	// resolveMu keeps concurrent resolutions from applying out of order.
	resolveMu sync.Mutex

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	ticker  ports.Timer
	running bool
	wg      sync.WaitGroup
}

// NewBannerEnricher creates a new BannerEnricher.
func NewBannerEnricher(
	userID snowflake.ID,
	source ports.BannerSource,
	store domain.SnapshotStore,
	cache *BannerCache,
	scheduler ports.Scheduler,
	interval time.Duration,
) *BannerEnricher {
	if interval <= 0 {
		interval = DefaultBannerRefreshInterval
	}
	return &BannerEnricher{
		userID:    userID,
		source:    source,
		store:     store,
		cache:     cache,
		scheduler: scheduler,
		interval:  interval,
	}
}

// Start runs the first resolution immediately and then polls on the configured interval.
func (e *BannerEnricher) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return
	}
	e.running = true
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.goResolveLocked()
	e.ticker = e.scheduler.Every(e.interval, e.Trigger)

	slog.Debug("banner enricher started", "user_id", e.userID, "interval", e.interval)
}

// Trigger starts a resolution in the background. It never blocks the caller.
func (e *BannerEnricher) Trigger() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.goResolveLocked()
}

func (e *BannerEnricher) goResolveLocked() {
	ctx := e.ctx
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.Resolve(ctx)
	}()
}

// Resolve performs one resolution cycle synchronously.
func (e *BannerEnricher) Resolve(ctx context.Context) {
	e.resolveMu.Lock()
	defer e.resolveMu.Unlock()

	url, err := e.source.ResolveBanner(ctx, e.userID)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("failed to resolve banner", "user_id", e.userID, "error", err)
		}
		return
	}
	if url == "" {
		slog.Debug("banner lookup returned no banner", "user_id", e.userID)
		return
	}

	changed := e.cache.swap(url)

	// The snapshot may lack a cached banner if it was published before the swap.
	e.store.Update(func(current domain.Snapshot, ok bool) (domain.Snapshot, bool) {
		if !ok || current.BannerURL == url {
			return current, false
		}
		return current.WithBanner(url), true
	})

	if changed {
		slog.Debug("resolved banner", "user_id", e.userID, "banner_url", url)
	}
}

// Stop cancels the poll and waits for in-flight resolutions.
func (e *BannerEnricher) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
	e.cancel()
	e.mu.Unlock()

	e.wg.Wait()
	slog.Debug("banner enricher stopped", "user_id", e.userID)
}
