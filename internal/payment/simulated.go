// Package payment provides the confirmation step run while seat locks
// are held.  The real gateway is out of scope; Simulated stands in for
// it with a fixed latency.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/seat-lock-reservation/internal/reservation"
)

// DefaultDelay is the simulated gateway latency.
const DefaultDelay = 500 * time.Millisecond

// ErrPaymentDeclined is returned when the request asks for an injected
// failure.
var ErrPaymentDeclined = errors.New("payment failed (simulated)")

// Simulated waits Delay and then succeeds unless the request carries
// FailureInjected.  A cancelled context ends the wait early with the
// context error.
type Simulated struct {
	Delay time.Duration
}

// Confirm implements reservation.Confirmer.
func (s Simulated) Confirm(ctx context.Context, req reservation.Request) error {
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	if req.FailureInjected {
		return ErrPaymentDeclined
	}
	return nil
}
