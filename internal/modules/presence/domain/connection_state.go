package domain

import (
	"fmt"
	"time"
)

// ConnectionPhase is the phase of the push channel's connection state machine.
type ConnectionPhase int

const (
	PhaseConnecting ConnectionPhase = iota
	PhaseOpen
	PhaseAwaitingHeartbeatAck // informational; the connection is still open
	PhaseClosed
)

// String returns a human-readable representation of the phase.
func (p ConnectionPhase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseOpen:
		return "open"
	case PhaseAwaitingHeartbeatAck:
		return "awaiting_heartbeat_ack"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ConnectionState is the push channel's connection state.
// HeartbeatInterval is set only in PhaseAwaitingHeartbeatAck, Attempt only in PhaseClosed.
type ConnectionState struct {
	Phase             ConnectionPhase
	HeartbeatInterval time.Duration
	Attempt           int
}

func Connecting() ConnectionState {
	return ConnectionState{Phase: PhaseConnecting}
}

func Open() ConnectionState {
	return ConnectionState{Phase: PhaseOpen}
}

func AwaitingHeartbeatAck(interval time.Duration) ConnectionState {
	return ConnectionState{Phase: PhaseAwaitingHeartbeatAck, HeartbeatInterval: interval}
}

func Closed(attempt int) ConnectionState {
	return ConnectionState{Phase: PhaseClosed, Attempt: attempt}
}

// IsOpen returns true if the connection is logically open.
func (s ConnectionState) IsOpen() bool {
	return s.Phase == PhaseOpen || s.Phase == PhaseAwaitingHeartbeatAck
}

// String returns a human-readable representation of the state.
func (s ConnectionState) String() string {
	switch s.Phase {
	case PhaseAwaitingHeartbeatAck:
		return fmt.Sprintf("%s(%dms)", s.Phase, s.HeartbeatInterval.Milliseconds())
	case PhaseClosed:
		return fmt.Sprintf("%s(attempt=%d)", s.Phase, s.Attempt)
	default:
		return s.Phase.String()
	}
}
