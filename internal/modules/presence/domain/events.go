package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// SnapshotChangedEvent is published after every change to the stored snapshot.
type SnapshotChangedEvent struct {
	Snapshot Snapshot
	Playback PlaybackView
	At       time.Time
}

// ConnectionStateChangedEvent is published when the push channel changes state.
type ConnectionStateChangedEvent struct {
	UserID snowflake.ID
	State  ConnectionState
}
