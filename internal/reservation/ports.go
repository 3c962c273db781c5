package reservation

import (
	"context"
	"time"

	"github.com/iliyamo/seat-lock-reservation/internal/model"
)

// LockStore is the shared key-value service holding seat locks.
// Acquire must be an atomic create-if-absent with expiry.  Release
// deletes key only while its value is still holder.
type LockStore interface {
	Acquire(ctx context.Context, key, holder string, ttl time.Duration) (bool, error)
	Peek(ctx context.Context, key string) (holder string, found bool, err error)
	Release(ctx context.Context, key, holder string) error
}

// BookingStore is the durable, transactional booking store.
type BookingStore interface {
	// FindConfirmedConflicts returns the subset of seatIDs that appear in
	// a CONFIRMED booking for showID.
	FindConfirmedConflicts(ctx context.Context, showID uint64, seatIDs []uint64) ([]uint64, error)
	// CreateConfirmedBooking writes one CONFIRMED booking claiming every
	// seat in a single transaction and returns its id.
	CreateConfirmedBooking(ctx context.Context, requesterID string, showID uint64, seatIDs []uint64) (uint64, error)
}

// Confirmer runs the external settlement step (payment).  It must fail
// when req.FailureInjected is set.
type Confirmer interface {
	Confirm(ctx context.Context, req Request) error
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, req Request) error

func (f ConfirmerFunc) Confirm(ctx context.Context, req Request) error { return f(ctx, req) }

// Publisher is notified after a booking has been committed.  Failures
// never change the outcome of the reservation.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, b model.Booking) error
}

// Reserver is implemented by both the secure controller and the naive
// path so the simulation driver can target either.
type Reserver interface {
	Reserve(ctx context.Context, req Request) (Result, error)
}

// Result describes a successful attempt.  States is also filled for
// failed attempts of the secure controller.
type Result struct {
	BookingID uint64
	States    []State
}
