package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gorilla/websocket"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/application/ports"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

// Lanyard socket opcodes.
const (
	opEvent      = 0
	opHello      = 1
	opInitialize = 2
	opHeartbeat  = 3
)

const eventPresenceUpdate = "PRESENCE_UPDATE"

const writeTimeout = 5 * time.Second

var (
	_ ports.PushDialer = (*LanyardDialer)(nil)
	_ ports.PushConn   = (*lanyardConn)(nil)
)

// LanyardDialer opens connections to the Lanyard socket.
type LanyardDialer struct {
	url    string
	dialer *websocket.Dialer
}

// NewLanyardDialer creates a new LanyardDialer.
func NewLanyardDialer(url string, handshakeTimeout time.Duration) *LanyardDialer {
	if handshakeTimeout <= 0 {
		handshakeTimeout = DefaultHTTPTimeout
	}
	return &LanyardDialer{
		url: url,
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

// Dial opens a new socket connection.
func (d *LanyardDialer) Dial(ctx context.Context) (ports.PushConn, error) {
	ws, resp, err := d.dialer.DialContext(ctx, d.url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: dial %s: http %d: %w", domain.ErrTransport, d.url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("%w: dial %s: %w", domain.ErrTransport, d.url, err)
	}
	return &lanyardConn{ws: ws}, nil
}

type lanyardFrame struct {
	Op   int             `json:"op"`
	T    string          `json:"t,omitempty"`
	Data json.RawMessage `json:"d,omitempty"`
}

type lanyardHello struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"`
}

type lanyardSubscribe struct {
	SubscribeToIDs []string `json:"subscribe_to_ids"`
}

// lanyardConn is one socket connection. Reads happen on a single goroutine;
// writes may come from the heartbeat timer concurrently and are serialized.
type lanyardConn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

// Receive reads the next frame. Frames that cannot be decoded are reported as Unknown.
func (c *lanyardConn) Receive() (ports.InboundMessage, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	return decodeFrame(data), nil
}

func decodeFrame(data []byte) ports.InboundMessage {
	var frame lanyardFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		slog.Debug("failed to decode socket frame", "error", err)
		return ports.Unknown{Op: -1}
	}

	switch {
	case frame.Op == opHello:
		var hello lanyardHello
		if err := json.Unmarshal(frame.Data, &hello); err != nil {
			slog.Debug("failed to decode hello", "error", err)
			return ports.Unknown{Op: frame.Op}
		}
		return ports.Hello{HeartbeatInterval: time.Duration(hello.HeartbeatInterval) * time.Millisecond}

	case frame.Op == opEvent && frame.T == eventPresenceUpdate:
		var presence lanyardPresence
		if err := json.Unmarshal(frame.Data, &presence); err != nil {
			slog.Debug("failed to decode presence update", "error", err)
			return ports.Unknown{Op: frame.Op, Event: frame.T}
		}
		return ports.PresenceUpdate{
			UserID:   presence.userID(),
			Presence: presence.toDomain(),
		}

	default:
		return ports.Unknown{Op: frame.Op, Event: frame.T}
	}
}

// Subscribe sends the initialize frame for the given users.
func (c *lanyardConn) Subscribe(userIDs ...snowflake.ID) error {
	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}
	data, err := json.Marshal(lanyardSubscribe{SubscribeToIDs: ids})
	if err != nil {
		return fmt.Errorf("failed to marshal subscribe frame: %w", err)
	}
	return c.write(lanyardFrame{Op: opInitialize, Data: data})
}

// Heartbeat sends a heartbeat frame.
func (c *lanyardConn) Heartbeat() error {
	return c.write(lanyardFrame{Op: opHeartbeat})
}

func (c *lanyardConn) write(frame lanyardFrame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	if err := c.ws.WriteJSON(frame); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	return nil
}

// Close sends a close frame and closes the underlying connection.
func (c *lanyardConn) Close() error {
	c.writeMu.Lock()
	_ = c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	c.writeMu.Unlock()
	return c.ws.Close()
}
