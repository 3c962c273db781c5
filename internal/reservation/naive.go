package reservation

import (
	"context"
	"time"
)

// DefaultNaiveDelay is the validation/pricing pause between the naive
// path's read and its write.
const DefaultNaiveDelay = 200 * time.Millisecond

// Naive books seats with an unguarded read, a pause and an
// unconditional write.  Two concurrent callers can both pass the read
// and both commit, so it double books under contention.  Do not use it
// for real bookings.
type Naive struct {
	bookings BookingStore
	delay    time.Duration
}

// NewNaive constructs the naive path.  A non-positive delay selects
// DefaultNaiveDelay.
func NewNaive(bookings BookingStore, delay time.Duration) *Naive {
	if bookings == nil {
		panic("nil booking store passed to NewNaive")
	}
	if delay <= 0 {
		delay = DefaultNaiveDelay
	}
	return &Naive{bookings: bookings, delay: delay}
}

// Reserve runs read -> delay -> write with no mutual exclusion.
func (n *Naive) Reserve(ctx context.Context, req Request) (Result, error) {
	seats, verr := req.validate()
	if verr != nil {
		return Result{}, verr
	}

	booked, err := n.bookings.FindConfirmedConflicts(ctx, req.ShowID, seats)
	if err != nil {
		return Result{}, dbWriteFailed("availability check failed", err)
	}
	if len(booked) > 0 {
		return Result{}, &Error{
			Kind:      KindConflict,
			SeatID:    booked[0],
			Conflicts: booked,
			Msg:       "one or more seats are already booked",
		}
	}

	t := time.NewTimer(n.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return Result{}, confirmationFailed(ctx.Err())
	case <-t.C:
	}

	id, err := n.bookings.CreateConfirmedBooking(ctx, req.RequesterID, req.ShowID, seats)
	if err != nil {
		return Result{}, dbWriteFailed("failed to create booking", err)
	}
	return Result{BookingID: id}, nil
}
