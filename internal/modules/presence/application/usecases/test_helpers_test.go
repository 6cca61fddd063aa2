package usecases

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/application/ports"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

const testUserID = snowflake.ID(94490510688792576)

var errConnClosed = errors.New("connection closed")

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func mockPresence(username string, status domain.Status) domain.Presence {
	return domain.Presence{
		User: domain.PresenceUser{
			ID:            testUserID,
			Username:      username,
			Discriminator: "0",
			Avatar:        "a1b2c3",
		},
		Activities:    []domain.Activity{},
		HasActivities: true,
		Status:        status,
	}
}

// mockStore is a minimal SnapshotStore.
type mockStore struct {
	mu          sync.Mutex
	snapshot    domain.Snapshot
	ok          bool
	subscribers map[int]func(domain.Snapshot)
	nextID      int
	writes      int
}

func newMockStore() *mockStore {
	return &mockStore{subscribers: make(map[int]func(domain.Snapshot))}
}

func (m *mockStore) Get() (domain.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot, m.ok
}

func (m *mockStore) Set(next domain.Snapshot) {
	m.Update(func(domain.Snapshot, bool) (domain.Snapshot, bool) { return next, true })
}

func (m *mockStore) Update(fn func(current domain.Snapshot, ok bool) (domain.Snapshot, bool)) {
	m.mu.Lock()
	next, changed := fn(m.snapshot, m.ok)
	if !changed {
		m.mu.Unlock()
		return
	}
	m.snapshot, m.ok = next, true
	m.writes++
	subscribers := make([]func(domain.Snapshot), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subscribers = append(subscribers, fn)
	}
	m.mu.Unlock()

	for _, fn := range subscribers {
		fn(next)
	}
}

func (m *mockStore) Subscribe(fn func(domain.Snapshot)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subscribers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

func (m *mockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot, m.ok = domain.Snapshot{}, false
}

func (m *mockStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// hookedStore runs beforeUpdate once, ahead of the first Update it receives.
type hookedStore struct {
	*mockStore
	mu           sync.Mutex
	beforeUpdate func()
}

func (h *hookedStore) Update(fn func(current domain.Snapshot, ok bool) (domain.Snapshot, bool)) {
	h.mu.Lock()
	hook := h.beforeUpdate
	h.beforeUpdate = nil
	h.mu.Unlock()

	if hook != nil {
		hook()
	}
	h.mockStore.Update(fn)
}

func (h *hookedStore) Set(next domain.Snapshot) {
	h.Update(func(domain.Snapshot, bool) (domain.Snapshot, bool) { return next, true })
}

type mockSnapshotSource struct {
	mu       sync.Mutex
	presence domain.Presence
	err      error
	calls    int
}

func (m *mockSnapshotSource) FetchPresence(
	_ context.Context,
	_ snowflake.ID,
) (domain.Presence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.Presence{}, m.err
	}
	return m.presence, nil
}

func (m *mockSnapshotSource) set(p domain.Presence, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presence, m.err = p, err
}

type mockBannerSource struct {
	mu    sync.Mutex
	url   string
	err   error
	calls int
}

func (m *mockBannerSource) ResolveBanner(_ context.Context, _ snowflake.ID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.url, m.err
}

func (m *mockBannerSource) set(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.url, m.err = url, err
}

func (m *mockBannerSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockTrigger struct {
	mu    sync.Mutex
	calls int
}

func (m *mockTrigger) Trigger() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
}

// mockTimer is a timer controlled by the test.
type mockTimer struct {
	scheduler *mockScheduler
	delay     time.Duration
	repeat    bool
	fn        func()
	stopped   bool
	fired     bool
}

func (t *mockTimer) Stop() bool {
	t.scheduler.mu.Lock()
	defer t.scheduler.mu.Unlock()
	if t.stopped || (t.fired && !t.repeat) {
		return false
	}
	t.stopped = true
	return true
}

// Fire runs the timer's callback on the calling goroutine.
func (t *mockTimer) Fire() {
	t.scheduler.mu.Lock()
	if t.stopped || (t.fired && !t.repeat) {
		t.scheduler.mu.Unlock()
		return
	}
	t.fired = true
	fn := t.fn
	t.scheduler.mu.Unlock()
	fn()
}

func (t *mockTimer) isStopped() bool {
	t.scheduler.mu.Lock()
	defer t.scheduler.mu.Unlock()
	return t.stopped
}

// mockScheduler records timers instead of running them.
type mockScheduler struct {
	mu     sync.Mutex
	once   []*mockTimer
	ticker []*mockTimer
}

func (s *mockScheduler) AfterFunc(d time.Duration, f func()) ports.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &mockTimer{scheduler: s, delay: d, fn: f}
	s.once = append(s.once, t)
	return t
}

func (s *mockScheduler) Every(interval time.Duration, f func()) ports.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &mockTimer{scheduler: s, delay: interval, repeat: true, fn: f}
	s.ticker = append(s.ticker, t)
	return t
}

func (s *mockScheduler) afterFuncs() []*mockTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.once)
}

func (s *mockScheduler) tickers() []*mockTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ticker)
}

// activeTickers returns the repeating timers that have not been stopped.
func (s *mockScheduler) activeTickers() []*mockTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*mockTimer
	for _, t := range s.ticker {
		if !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

// mockConn is a push connection fed by the test.
type mockConn struct {
	messages  chan ports.InboundMessage
	closed    chan struct{}
	closeOnce sync.Once

	mu         sync.Mutex
	subscribed []snowflake.ID
	heartbeats int
}

func newMockConn() *mockConn {
	return &mockConn{
		messages: make(chan ports.InboundMessage, 16),
		closed:   make(chan struct{}),
	}
}

func (c *mockConn) Receive() (ports.InboundMessage, error) {
	select {
	case <-c.closed:
		return nil, errConnClosed
	default:
	}
	select {
	case msg := <-c.messages:
		return msg, nil
	case <-c.closed:
		return nil, errConnClosed
	}
}

func (c *mockConn) Subscribe(userIDs ...snowflake.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribed = append(c.subscribed, userIDs...)
	return nil
}

func (c *mockConn) Heartbeat() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heartbeats++
	return nil
}

func (c *mockConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *mockConn) send(msg ports.InboundMessage) {
	c.messages <- msg
}

func (c *mockConn) subscribedIDs() []snowflake.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.subscribed)
}

func (c *mockConn) heartbeatCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heartbeats
}

// mockDialer hands out queued connections, then fails.
type mockDialer struct {
	mu    sync.Mutex
	conns []*mockConn
	err   error
	dials int
}

func (d *mockDialer) Dial(_ context.Context) (ports.PushConn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if len(d.conns) == 0 {
		if d.err != nil {
			return nil, d.err
		}
		return nil, errors.New("no connection available")
	}
	conn := d.conns[0]
	d.conns = d.conns[1:]
	return conn, nil
}

func (d *mockDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

type mockEventPublisher struct {
	mu               sync.Mutex
	snapshotChanged  []domain.SnapshotChangedEvent
	connectionStates []domain.ConnectionStateChangedEvent
}

func (m *mockEventPublisher) PublishSnapshotChanged(event domain.SnapshotChangedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshotChanged = append(m.snapshotChanged, event)
}

func (m *mockEventPublisher) PublishConnectionStateChanged(
	event domain.ConnectionStateChangedEvent,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectionStates = append(m.connectionStates, event)
}

func (m *mockEventPublisher) snapshots() []domain.SnapshotChangedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.snapshotChanged)
}

func (m *mockEventPublisher) phases() []domain.ConnectionPhase {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ConnectionPhase, 0, len(m.connectionStates))
	for _, e := range m.connectionStates {
		out = append(out, e.State.Phase)
	}
	return out
}
