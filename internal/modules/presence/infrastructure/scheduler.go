package infrastructure

import (
	"sync"
	"time"

	"github.com/sglre6355/sgrpresence/internal/modules/presence/application/ports"
)

var _ ports.Scheduler = TimeScheduler{}

// TimeScheduler is a Scheduler backed by the runtime timers.
type TimeScheduler struct{}

// NewTimeScheduler creates a new TimeScheduler.
func NewTimeScheduler() TimeScheduler {
	return TimeScheduler{}
}

// AfterFunc runs f once after d on its own goroutine.
func (TimeScheduler) AfterFunc(d time.Duration, f func()) ports.Timer {
	return time.AfterFunc(d, f)
}

// Every runs f at each tick until stopped. Ticks that arrive while f is still
// running are skipped.
func (TimeScheduler) Every(interval time.Duration, f func()) ports.Timer {
	t := &ticker{
		ticker: time.NewTicker(interval),
		stop:   make(chan struct{}),
	}
	go t.run(f)
	return t
}

type ticker struct {
	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

func (t *ticker) run(f func()) {
	for {
		select {
		case <-t.stop:
			return
		case <-t.ticker.C:
			select {
			case <-t.stop:
				return
			default:
			}
			f()
		}
	}
}

// Stop cancels future ticks. It does not wait for a running callback.
func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.stop)
		stopped = true
	})
	return stopped
}
