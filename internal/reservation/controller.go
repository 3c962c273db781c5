// Package reservation implements seat reservation on top of a shared
// lock store and a durable booking store.
//
// Controller is the secure path: it locks every requested seat (all or
// nothing, ascending seat id order), re-checks the durable store, runs
// the confirmation step and commits a single CONFIRMED booking.  Every
// exit path releases every lock the attempt acquired; the lock TTL only
// covers a crash between acquisition and cleanup.
//
// Naive is the unprotected read-delay-write baseline kept to reproduce
// double booking under concurrency.
package reservation

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/seat-lock-reservation/internal/model"
)

// DefaultLockTTL bounds how long a lock outlives a crashed holder.
const DefaultLockTTL = 600 * time.Second

// DefaultPublishTimeout bounds the post-commit publish, dial included.
const DefaultPublishTimeout = 5 * time.Second

// Controller is the secure reservation controller.  It is safe for
// concurrent use; all shared state lives in the LockStore.
type Controller struct {
	locks     LockStore
	bookings  BookingStore
	confirmer Confirmer
	publisher Publisher
	lockTTL   time.Duration
	pubWait   time.Duration
	debug     bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(c *Controller) {
		if ttl > 0 {
			c.lockTTL = ttl
		}
	}
}

// WithPublisher registers a Publisher notified after each commit.
func WithPublisher(p Publisher) Option {
	return func(c *Controller) { c.publisher = p }
}

// WithPublishTimeout overrides DefaultPublishTimeout.
func WithPublishTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.pubWait = d
		}
	}
}

// WithDebug logs every state transition.
func WithDebug(on bool) Option {
	return func(c *Controller) { c.debug = on }
}

// NewController constructs a Controller.  All three collaborators are
// required.
func NewController(locks LockStore, bookings BookingStore, confirmer Confirmer, opts ...Option) *Controller {
	if locks == nil || bookings == nil || confirmer == nil {
		panic("nil dependency passed to NewController")
	}
	c := &Controller{
		locks:     locks,
		bookings:  bookings,
		confirmer: confirmer,
		lockTTL:   DefaultLockTTL,
		pubWait:   DefaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LockTTL returns the expiry used for seat locks.
func (c *Controller) LockTTL() time.Duration { return c.lockTTL }

// Reserve runs one reservation attempt.  On failure the error is always
// an *Error and no lock acquired by this attempt is left behind.
func (c *Controller) Reserve(ctx context.Context, req Request) (Result, error) {
	a := &attempt{c: c, req: req}
	a.enter(StateStart)

	seats, verr := req.validate()
	if verr != nil {
		return a.fail(ctx, verr)
	}
	a.seats = seats

	a.enter(StateLocksAcquiring)
	if err := a.acquireAll(ctx); err != nil {
		return a.fail(ctx, err)
	}
	a.enter(StateLocksHeld)

	conflicts, err := c.bookings.FindConfirmedConflicts(ctx, req.ShowID, seats)
	if err != nil {
		return a.fail(ctx, a.abortOr(ctx, dbWriteFailed("double-check failed", err)))
	}
	if len(conflicts) > 0 {
		return a.fail(ctx, alreadyBooked(conflicts))
	}
	a.enter(StateDBVerified)

	a.enter(StateConfirming)
	if err := c.confirmer.Confirm(ctx, req); err != nil {
		return a.fail(ctx, confirmationFailed(err))
	}
	if err := ctx.Err(); err != nil {
		return a.fail(ctx, confirmationFailed(err))
	}

	id, err := c.bookings.CreateConfirmedBooking(ctx, req.RequesterID, req.ShowID, seats)
	if err != nil {
		return a.fail(ctx, a.abortOr(ctx, dbWriteFailed("failed to create booking", err)))
	}
	a.enter(StateCommitted)
	// the durable store is authoritative from here on
	a.releaseAll(ctx)

	c.publish(ctx, model.Booking{
		ID:          id,
		RequesterID: req.RequesterID,
		ShowID:      req.ShowID,
		Status:      model.BookingConfirmed,
		SeatIDs:     seats,
		CreatedAt:   time.Now().UTC(),
	})
	return Result{BookingID: id, States: a.states}, nil
}

func (c *Controller) publish(ctx context.Context, b model.Booking) {
	if c.publisher == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.pubWait)
	defer cancel()
	if err := c.publisher.PublishBookingConfirmed(pctx, b); err != nil {
		log.Printf("reservation: publish booking %d failed: %v", b.ID, err)
	}
}

// attempt carries the per-call state of Reserve.
type attempt struct {
	c      *Controller
	req    Request
	seats  []uint64
	held   []string
	states []State
}

func (a *attempt) enter(s State) {
	if a.c.debug && len(a.states) > 0 {
		log.Printf("reservation: requester=%s show=%d %s -> %s", a.req.RequesterID, a.req.ShowID, a.states[len(a.states)-1], s)
	}
	a.states = append(a.states, s)
}

// acquireAll locks the seats in ascending id order and stops at the
// first seat it cannot lock.  Locks taken so far stay in a.held for
// fail to release.
func (a *attempt) acquireAll(ctx context.Context) *Error {
	for _, seatID := range a.seats {
		key := LockKey(a.req.ShowID, seatID)
		ok, err := a.c.locks.Acquire(ctx, key, a.req.RequesterID, a.c.lockTTL)
		if err != nil {
			// the write may have landed; Release is owner-guarded
			a.held = append(a.held, key)
			return a.abortOr(ctx, seatHeld(seatID, false, err))
		}
		if !ok {
			holder, found, perr := a.c.locks.Peek(ctx, key)
			self := perr == nil && found && holder == a.req.RequesterID
			return seatHeld(seatID, self, nil)
		}
		a.held = append(a.held, key)
	}
	return nil
}

// releaseAll deletes every lock this attempt holds.  It runs even when
// ctx has been cancelled and empties a.held so no lock is released twice.
func (a *attempt) releaseAll(ctx context.Context) {
	if len(a.held) == 0 {
		return
	}
	rctx := context.WithoutCancel(ctx)
	for _, key := range a.held {
		if err := a.c.locks.Release(rctx, key, a.req.RequesterID); err != nil {
			log.Printf("reservation: release %s for %s failed, left to ttl: %v", key, a.req.RequesterID, err)
		}
	}
	a.held = nil
}

func (a *attempt) fail(ctx context.Context, err *Error) (Result, error) {
	a.releaseAll(ctx)
	a.enter(StateRolledBack)
	a.enter(StateFailed)
	if a.c.debug {
		log.Printf("reservation: requester=%s show=%d failed: %v", a.req.RequesterID, a.req.ShowID, err)
	}
	return Result{States: a.states}, err
}

// abortOr reports a cancelled caller as CONFIRMATION_FAILED; otherwise
// it returns fallback.
func (a *attempt) abortOr(ctx context.Context, fallback *Error) *Error {
	if cerr := ctx.Err(); cerr != nil {
		return confirmationFailed(cerr)
	}
	return fallback
}
