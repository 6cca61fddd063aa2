package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/application/ports"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

// SessionOptions configures a Session.
type SessionOptions struct {
	UserID                snowflake.ID
	Badges                []string
	BannerRefreshInterval time.Duration
}

// SessionDeps holds the collaborators of a Session. Publisher may be nil.
type SessionDeps struct {
	Store     domain.SnapshotStore
	Snapshots ports.SnapshotSource
	Banners   ports.BannerSource
	Dialer    ports.PushDialer
	Scheduler ports.Scheduler
	Publisher ports.EventPublisher
}

// View is the state exposed to the rendering layer.
type View struct {
	Snapshot *domain.Snapshot
	Loading  bool
	Error    string
}

// Session owns one tracked user's synchronization: the initial fetch, the banner
// poll and the push channel, all writing to a single store.
type Session struct {
	userID    snowflake.ID
	store     domain.SnapshotStore
	publisher ports.EventPublisher

	fetcher  *SnapshotFetcher
	enricher *BannerEnricher
	channel  *PresenceChannel

	mu          sync.RWMutex
	loading     bool
	lastErr     string
	cancel      context.CancelFunc
	unsubscribe func()

	wg  sync.WaitGroup
	now func() time.Time
}

// NewSession creates a Session. A missing user id is a configuration error.
func NewSession(opts SessionOptions, deps SessionDeps) (*Session, error) {
	if opts.UserID == 0 {
		return nil, fmt.Errorf("%w: missing target user id", domain.ErrConfig)
	}

	cache := NewBannerCache()
	enricher := NewBannerEnricher(
		opts.UserID,
		deps.Banners,
		deps.Store,
		cache,
		deps.Scheduler,
		opts.BannerRefreshInterval,
	)

	return &Session{
		userID:    opts.UserID,
		store:     deps.Store,
		publisher: deps.Publisher,
		fetcher: NewSnapshotFetcher(
			opts.UserID,
			deps.Snapshots,
			deps.Store,
			cache,
			enricher,
			opts.Badges,
		),
		enricher: enricher,
		channel: NewPresenceChannel(
			opts.UserID,
			deps.Dialer,
			deps.Store,
			cache,
			deps.Scheduler,
			deps.Publisher,
		),
		loading: true,
		now:     time.Now,
	}, nil
}

// Start begins synchronization. The initial fetch, the first banner resolution and
// the push channel all run concurrently; none waits for another.
func (s *Session) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	s.unsubscribe = s.store.Subscribe(s.onSnapshotChanged)
	s.mu.Unlock()

	s.enricher.Start(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.fetch(ctx)
	}()

	s.channel.Start(ctx)

	slog.Info("started presence session", "user_id", s.userID)
}

// Refresh re-runs the snapshot fetch. Failed fetches are never retried automatically;
// this is the caller's retry path.
func (s *Session) Refresh(ctx context.Context) error {
	return s.fetch(ctx)
}

func (s *Session) fetch(ctx context.Context) error {
	_, err := s.fetcher.FetchInitial(ctx)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
	} else {
		s.lastErr = ""
	}
	s.mu.Unlock()

	if err != nil {
		slog.Error("failed to fetch presence snapshot", "user_id", s.userID, "error", err)
	}
	return err
}

// View returns the current snapshot together with loading and error state.
func (s *Session) View() View {
	s.mu.RLock()
	view := View{Loading: s.loading, Error: s.lastErr}
	s.mu.RUnlock()

	if snapshot, ok := s.store.Get(); ok {
		view.Snapshot = &snapshot
	}
	return view
}

// Snapshot returns the current snapshot, or domain.ErrNoSnapshot before the first
// successful fetch.
func (s *Session) Snapshot() (domain.Snapshot, error) {
	snapshot, ok := s.store.Get()
	if !ok {
		return domain.Snapshot{}, domain.ErrNoSnapshot
	}
	return snapshot, nil
}

// Playback projects the current snapshot at this instant.
func (s *Session) Playback() domain.PlaybackView {
	snapshot, ok := s.store.Get()
	if !ok {
		return domain.NotPlaying
	}
	return domain.Project(&snapshot, s.now())
}

// ConnectionState returns the push channel's state.
func (s *Session) ConnectionState() domain.ConnectionState {
	return s.channel.State()
}

// UserID returns the tracked user's id.
func (s *Session) UserID() snowflake.ID {
	return s.userID
}

// Stop cancels all timers, closes the push channel and discards the snapshot.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	unsubscribe := s.unsubscribe
	s.cancel = nil
	s.unsubscribe = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	s.enricher.Stop()
	s.channel.Stop()
	s.wg.Wait()

	unsubscribe()
	s.store.Clear()

	slog.Info("stopped presence session", "user_id", s.userID)
}

// onSnapshotChanged recomputes the playback projection for every change.
func (s *Session) onSnapshotChanged(snapshot domain.Snapshot) {
	if s.publisher == nil {
		return
	}
	now := s.now()
	s.publisher.PublishSnapshotChanged(domain.SnapshotChangedEvent{
		Snapshot: snapshot,
		Playback: domain.Project(&snapshot, now),
		At:       now,
	})
}
