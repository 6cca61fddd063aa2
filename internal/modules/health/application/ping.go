package application

import (
	"time"

	"github.com/sglre6355/sgrpresence/internal/modules/health/domain"
)

// PingInteractor handles the ping use case.
type PingInteractor struct {
	startedAt time.Time
	now       func() time.Time
}

// NewPingInteractor creates a new PingInteractor measuring uptime from startedAt.
func NewPingInteractor(startedAt time.Time) *PingInteractor {
	return &PingInteractor{
		startedAt: startedAt,
		now:       time.Now,
	}
}

// Execute performs the ping operation and returns the result.
func (p *PingInteractor) Execute() *domain.PingResult {
	return domain.NewPingResult(p.startedAt, p.now())
}
