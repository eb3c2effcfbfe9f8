package notion

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPaceInterval keeps requests under the workspace rate limit of
// three requests per second.
const DefaultPaceInterval = 300 * time.Millisecond

// Pacer blocks until the next request may be sent.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NewPacer returns a pacer that lets one request through per interval.
// The first request is not delayed.
func NewPacer(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}
