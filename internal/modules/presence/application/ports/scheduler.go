package ports

import "time"

// Timer is a scheduled task that can be cancelled.
type Timer interface {
	// Stop cancels the task. It reports false if the task had already fired (one-shot)
	// or was already stopped.
	Stop() bool
}

// Scheduler schedules callbacks on timers.
type Scheduler interface {
	// AfterFunc runs f once after d.
	AfterFunc(d time.Duration, f func()) Timer

	// Every runs f repeatedly at the given interval until stopped.
	Every(interval time.Duration, f func()) Timer
}
