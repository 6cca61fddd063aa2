package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

type mockNATSConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (m *mockNATSConn) Publish(subject string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.subjects = append(m.subjects, subject)
	m.payloads = append(m.payloads, data)
	return nil
}

type mockEventSubscriber struct {
	snapshot   func(context.Context, domain.SnapshotChangedEvent)
	connection func(context.Context, domain.ConnectionStateChangedEvent)
}

func (m *mockEventSubscriber) OnSnapshotChanged(h func(context.Context, domain.SnapshotChangedEvent)) {
	m.snapshot = h
}

func (m *mockEventSubscriber) OnConnectionStateChanged(
	h func(context.Context, domain.ConnectionStateChangedEvent),
) {
	m.connection = h
}

func TestNATSPublisher_SnapshotChanged(t *testing.T) {
	conn := &mockNATSConn{}
	sub := &mockEventSubscriber{}
	NewNATSPublisher(conn, "").Register(sub)

	s := testSnapshot(domain.StatusDND)
	s.Activities = []domain.Activity{{Kind: domain.ActivityKindGame, Name: "Factorio"}}
	sub.snapshot(context.Background(), domain.SnapshotChangedEvent{
		Snapshot: s,
		Playback: domain.NotPlaying,
		At:       time.Unix(1700000000, 0),
	})

	want := []string{
		"presence.snapshot.94490510688792576",
		"presence.playback.94490510688792576",
	}
	if len(conn.subjects) != len(want) {
		t.Fatalf("expected %d messages, got %v", len(want), conn.subjects)
	}
	for i := range want {
		if conn.subjects[i] != want[i] {
			t.Errorf("message %d: expected subject %q, got %q", i, want[i], conn.subjects[i])
		}
	}

	var msg snapshotMessage
	if err := json.Unmarshal(conn.payloads[0], &msg); err != nil {
		t.Fatalf("failed to decode snapshot message: %v", err)
	}
	if msg.Status != "dnd" || msg.UserID != "94490510688792576" {
		t.Errorf("unexpected snapshot message: %+v", msg)
	}
	if len(msg.Activities) != 1 || msg.Activities[0].Name != "Factorio" {
		t.Errorf("expected Factorio activity, got %+v", msg.Activities)
	}

	var playback domain.PlaybackView
	if err := json.Unmarshal(conn.payloads[1], &playback); err != nil {
		t.Fatalf("failed to decode playback message: %v", err)
	}
	if playback.IsPlaying {
		t.Error("expected not playing")
	}
}

func TestNATSPublisher_ConnectionStateChanged(t *testing.T) {
	conn := &mockNATSConn{}
	sub := &mockEventSubscriber{}
	NewNATSPublisher(conn, "lanyard").Register(sub)

	sub.connection(context.Background(), domain.ConnectionStateChangedEvent{
		UserID: testUserID,
		State:  domain.AwaitingHeartbeatAck(30 * time.Second),
	})

	if len(conn.subjects) != 1 || conn.subjects[0] != "lanyard.connection.94490510688792576" {
		t.Fatalf("unexpected subjects: %v", conn.subjects)
	}

	var msg connectionMessage
	if err := json.Unmarshal(conn.payloads[0], &msg); err != nil {
		t.Fatalf("failed to decode connection message: %v", err)
	}
	if msg.HeartbeatInterval != 30000 {
		t.Errorf("expected 30000ms interval, got %d", msg.HeartbeatInterval)
	}
}

func TestNATSPublisher_PublishErrorIsSwallowed(t *testing.T) {
	conn := &mockNATSConn{err: errors.New("nats: connection closed")}
	sub := &mockEventSubscriber{}
	NewNATSPublisher(conn, "").Register(sub)

	sub.snapshot(context.Background(), domain.SnapshotChangedEvent{
		Snapshot: testSnapshot(domain.StatusOnline),
	})

	if len(conn.subjects) != 0 {
		t.Errorf("expected nothing recorded, got %v", conn.subjects)
	}
}
