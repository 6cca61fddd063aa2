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

// Reconnect policy. The attempt cap is fixed.
const (
	MaxReconnectAttempts = 5
	reconnectBaseDelay   = time.Second
	reconnectMaxDelay    = 10 * time.Second
)

// ReconnectDelay returns the backoff before reconnect attempt number attempt+1.
func ReconnectDelay(attempt int) time.Duration {
	return min(reconnectBaseDelay*time.Duration(attempt+1), reconnectMaxDelay)
}

// PresenceChannel keeps the snapshot live from the push connection.
// It owns the connection state machine, heartbeat timer and reconnect timer.
type PresenceChannel struct {
	userID    snowflake.ID
	dialer    ports.PushDialer
	store     domain.SnapshotStore
	banners   *BannerCache
	scheduler ports.Scheduler
	publisher ports.EventPublisher

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	alive     bool
	state     domain.ConnectionState
	conn      ports.PushConn
	heartbeat ports.Timer
	reconnect ports.Timer
	attempt   int

	wg sync.WaitGroup
}

// NewPresenceChannel creates a new PresenceChannel. publisher may be nil.
func NewPresenceChannel(
	userID snowflake.ID,
	dialer ports.PushDialer,
	store domain.SnapshotStore,
	banners *BannerCache,
	scheduler ports.Scheduler,
	publisher ports.EventPublisher,
) *PresenceChannel {
	return &PresenceChannel{
		userID:    userID,
		dialer:    dialer,
		store:     store,
		banners:   banners,
		scheduler: scheduler,
		publisher: publisher,
		state:     domain.Closed(0),
	}
}

// State returns the current connection state.
func (c *PresenceChannel) State() domain.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start opens the push connection in the background.
func (c *PresenceChannel) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.alive {
		return
	}
	c.alive = true
	c.attempt = 0
	c.ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.connect()
	}()
}

// Stop closes the connection and cancels the heartbeat and any pending reconnect.
// A reconnect that is already firing observes the stop and does not dial.
func (c *PresenceChannel) Stop() {
	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return
	}
	c.alive = false
	c.cancel()
	c.stopHeartbeatLocked()
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			slog.Debug("failed to close presence channel", "user_id", c.userID, "error", err)
		}
	}

	c.wg.Wait()
	slog.Debug("presence channel stopped", "user_id", c.userID)
}

func (c *PresenceChannel) connect() {
	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return
	}
	ctx := c.ctx
	c.setStateLocked(domain.Connecting())
	c.mu.Unlock()

	conn, err := c.dialer.Dial(ctx)
	if err != nil {
		slog.Warn("failed to open presence channel", "user_id", c.userID, "error", err)
		c.handleClosed(nil)
		return
	}

	c.mu.Lock()
	if !c.alive {
		c.setStateLocked(domain.Closed(c.attempt))
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.attempt = 0
	c.setStateLocked(domain.Open())
	c.mu.Unlock()

	slog.Info("opened presence channel", "user_id", c.userID)

	if err := conn.Subscribe(c.userID); err != nil {
		slog.Warn("failed to subscribe to presence updates", "user_id", c.userID, "error", err)
		_ = conn.Close()
	}

	c.readLoop(conn)
}

func (c *PresenceChannel) readLoop(conn ports.PushConn) {
	for {
		msg, err := conn.Receive()
		if err != nil {
			slog.Warn("presence channel closed", "user_id", c.userID, "error", err)
			c.handleClosed(conn)
			return
		}
		c.handleMessage(conn, msg)
	}
}

func (c *PresenceChannel) handleMessage(conn ports.PushConn, msg ports.InboundMessage) {
	switch m := msg.(type) {
	case ports.Hello:
		c.startHeartbeat(conn, m.HeartbeatInterval)
	case ports.PresenceUpdate:
		if m.UserID != c.userID {
			slog.Debug("ignoring presence update for another user",
				"user_id", c.userID,
				"event_user_id", m.UserID,
			)
			return
		}
		c.mergePresence(m.Presence)
	case ports.Unknown:
		slog.Debug("ignoring presence channel message", "op", m.Op, "event", m.Event)
	}
}

// startHeartbeat replaces any running heartbeat with one at the announced interval.
func (c *PresenceChannel) startHeartbeat(conn ports.PushConn, interval time.Duration) {
	if interval <= 0 {
		slog.Warn("ignoring hello without heartbeat interval", "user_id", c.userID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.alive || c.conn != conn {
		return
	}

	c.stopHeartbeatLocked()
	c.heartbeat = c.scheduler.Every(interval, func() {
		if err := conn.Heartbeat(); err != nil {
			slog.Warn("failed to send heartbeat", "user_id", c.userID, "error", err)
		}
	})
	c.setStateLocked(domain.AwaitingHeartbeatAck(interval))

	slog.Debug("armed heartbeat", "user_id", c.userID, "interval_ms", interval.Milliseconds())
}

func (c *PresenceChannel) mergePresence(p domain.Presence) {
	c.store.Update(func(current domain.Snapshot, ok bool) (domain.Snapshot, bool) {
		if !ok {
			slog.Debug("dropping presence update received before initial snapshot",
				"user_id", c.userID,
			)
			return current, false
		}
		next := domain.Merge(current, p)
		if banner := c.banners.Get(); banner != "" {
			next.BannerURL = banner
		}
		return next, true
	})
}

// handleClosed moves to Closed and schedules a reconnect while attempts remain.
// conn is nil when the dial itself failed.
func (c *PresenceChannel) handleClosed(conn ports.PushConn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if conn != nil && c.conn != conn {
		return
	}
	c.conn = nil
	c.stopHeartbeatLocked()
	c.setStateLocked(domain.Closed(c.attempt))

	if !c.alive {
		return
	}

	if c.attempt >= MaxReconnectAttempts {
		slog.Warn("giving up on presence channel",
			"user_id", c.userID,
			"attempts", c.attempt,
		)
		return
	}

	delay := ReconnectDelay(c.attempt)
	c.attempt++

	slog.Info("scheduling presence channel reconnect",
		"user_id", c.userID,
		"attempt", c.attempt,
		"delay_ms", delay.Milliseconds(),
	)

	c.reconnect = c.scheduler.AfterFunc(delay, c.reconnectNow)
}

func (c *PresenceChannel) reconnectNow() {
	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return
	}
	c.reconnect = nil
	c.wg.Add(1)
	c.mu.Unlock()

	defer c.wg.Done()
	c.connect()
}

func (c *PresenceChannel) stopHeartbeatLocked() {
	if c.heartbeat != nil {
		c.heartbeat.Stop()
		c.heartbeat = nil
	}
}

func (c *PresenceChannel) setStateLocked(state domain.ConnectionState) {
	c.state = state
	if c.publisher != nil {
		c.publisher.PublishConnectionStateChanged(domain.ConnectionStateChangedEvent{
			UserID: c.userID,
			State:  state,
		})
	}
}
