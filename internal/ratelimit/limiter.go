package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle bounds how fast review actions are sent to the wiki. A nil or
// zero-rate Throttle never blocks.
type Throttle struct {
	limiter *rate.Limiter
}

func NewThrottle(perMinute float64, burst int) *Throttle {
	if perMinute <= 0 {
		return &Throttle{}
	}
	if burst <= 0 {
		burst = 1
	}
	every := time.Duration(float64(time.Minute) / perMinute)
	return &Throttle{limiter: rate.NewLimiter(rate.Every(every), burst)}
}

// Wait blocks until the next action is allowed or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.limiter == nil {
		return ctx.Err()
	}
	return t.limiter.Wait(ctx)
}
