package scan

import (
	"context"
	"time"
)

// DefaultPace is the inter-symbol delay used to stay under the
// provider's rate limits.
const DefaultPace = 300 * time.Millisecond

// Pacer spaces successive provider calls by a fixed interval.
type Pacer struct {
	interval time.Duration
}

// NewPacer builds a pacer. A non-positive interval disables the wait.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait blocks for one interval or until the context is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
