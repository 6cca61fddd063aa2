package domain

import "time"

// PingResult is the answer to a liveness probe.
type PingResult struct {
	Message   string
	Timestamp time.Time
	Uptime    time.Duration
}

// NewPingResult creates a PingResult for a process started at startedAt.
func NewPingResult(startedAt, now time.Time) *PingResult {
	return &PingResult{
		Message:   "Pong!",
		Timestamp: now,
		Uptime:    now.Sub(startedAt),
	}
}
