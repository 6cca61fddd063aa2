package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/application/ports"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

// DefaultNATSSubjectPrefix is the subject prefix for published presence messages.
const DefaultNATSSubjectPrefix = "presence"

// NATSConn is the subset of *nats.Conn used by NATSPublisher.
type NATSConn interface {
	Publish(subject string, data []byte) error
}

// ConnectNATS connects to the NATS server at url, reconnecting indefinitely.
func ConnectNATS(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("sgrpresence"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return nc, nil
}

// NATSPublisher forwards presence events to NATS subjects:
//
//	<prefix>.snapshot.<user id>    every snapshot change
//	<prefix>.playback.<user id>    the playback projection of that change
//	<prefix>.connection.<user id>  push channel state changes
type NATSPublisher struct {
	conn   NATSConn
	prefix string
}

// NewNATSPublisher creates a new NATSPublisher.
func NewNATSPublisher(conn NATSConn, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = DefaultNATSSubjectPrefix
	}
	return &NATSPublisher{conn: conn, prefix: prefix}
}

// Register subscribes the publisher to the given event source.
func (p *NATSPublisher) Register(subscriber ports.EventSubscriber) {
	subscriber.OnSnapshotChanged(p.handleSnapshotChanged)
	subscriber.OnConnectionStateChanged(p.handleConnectionStateChanged)
}

type snapshotMessage struct {
	UserID        string            `json:"user_id"`
	Username      string            `json:"username"`
	Discriminator string            `json:"discriminator"`
	Avatar        string            `json:"avatar,omitempty"`
	BannerURL     string            `json:"banner_url,omitempty"`
	Status        string            `json:"status"`
	About         string            `json:"about,omitempty"`
	Badges        []string          `json:"badges"`
	Activities    []activityMessage `json:"activities"`
	At            time.Time         `json:"at"`
}

type activityMessage struct {
	Type    int    `json:"type"`
	Name    string `json:"name"`
	Details string `json:"details,omitempty"`
	State   string `json:"state,omitempty"`
}

type connectionMessage struct {
	UserID            string `json:"user_id"`
	State             string `json:"state"`
	HeartbeatInterval int64  `json:"heartbeat_interval_ms,omitempty"`
	Attempt           int    `json:"attempt,omitempty"`
}

func (p *NATSPublisher) handleSnapshotChanged(_ context.Context, event domain.SnapshotChangedEvent) {
	s := event.Snapshot
	msg := snapshotMessage{
		UserID:        s.ID.String(),
		Username:      s.Username,
		Discriminator: s.Discriminator,
		Avatar:        s.Avatar,
		BannerURL:     s.BannerURL,
		Status:        s.Status.String(),
		About:         s.About,
		Badges:        s.Badges,
		Activities:    make([]activityMessage, 0, len(s.Activities)),
		At:            event.At,
	}
	for _, a := range s.Activities {
		msg.Activities = append(msg.Activities, activityMessage{
			Type:    int(a.Kind),
			Name:    a.Name,
			Details: a.Details,
			State:   a.State,
		})
	}

	p.publish(p.subject("snapshot", s.ID.String()), msg)
	p.publish(p.subject("playback", s.ID.String()), event.Playback)
}

func (p *NATSPublisher) handleConnectionStateChanged(
	_ context.Context,
	event domain.ConnectionStateChangedEvent,
) {
	p.publish(p.subject("connection", event.UserID.String()), connectionMessage{
		UserID:            event.UserID.String(),
		State:             event.State.Phase.String(),
		HeartbeatInterval: event.State.HeartbeatInterval.Milliseconds(),
		Attempt:           event.State.Attempt,
	})
}

func (p *NATSPublisher) subject(kind, userID string) string {
	return p.prefix + "." + kind + "." + userID
}

func (p *NATSPublisher) publish(subject string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal nats message", "subject", subject, "error", err)
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		slog.Warn("failed to publish nats message", "subject", subject, "error", err)
		return
	}
	slog.Debug("published nats message", "subject", subject)
}
