package reservation

import (
	"errors"
	"fmt"
)

// Kind classifies why a reservation attempt failed.  It is the only
// failure information that crosses the controller boundary; raw store
// errors are kept in Error.Err for logging.
type Kind string

const (
	// KindInvalidRequest: empty or duplicate seat ids, missing requester.
	// No lock or booking was touched.
	KindInvalidRequest Kind = "INVALID_REQUEST"
	// KindSeatHeld: another attempt holds the lock on a seat.  Transient.
	KindSeatHeld Kind = "SEAT_HELD"
	// KindAlreadyBooked: a CONFIRMED booking already claims a seat.
	// Retrying with the same seats will not help.
	KindAlreadyBooked Kind = "ALREADY_BOOKED"
	// KindConfirmationFailed: payment failed or the caller aborted.
	KindConfirmationFailed Kind = "CONFIRMATION_FAILED"
	// KindDBWriteFailed: the durable store could not be read or written.
	KindDBWriteFailed Kind = "DB_WRITE_FAILED"
	// KindConflict is returned only by the naive path when its read
	// finds a confirmed booking.
	KindConflict Kind = "CONFLICT"
)

// Error is returned by Reserve for every failed attempt.
type Error struct {
	Kind       Kind
	SeatID     uint64   // seat that caused SEAT_HELD / ALREADY_BOOKED
	HeldBySelf bool     // SEAT_HELD only: the lock holder is the same requester
	Conflicts  []uint64 // ALREADY_BOOKED / CONFLICT: every conflicting seat
	Msg        string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" when err is nil or was not
// produced by this package.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

func invalidRequest(msg string) *Error {
	return &Error{Kind: KindInvalidRequest, Msg: msg}
}

func seatHeld(seatID uint64, self bool, cause error) *Error {
	who := "someone else"
	if self {
		who = "you"
	}
	return &Error{
		Kind:       KindSeatHeld,
		SeatID:     seatID,
		HeldBySelf: self,
		Msg:        fmt.Sprintf("seat %d is already held by %s", seatID, who),
		Err:        cause,
	}
}

func alreadyBooked(conflicts []uint64) *Error {
	return &Error{
		Kind:      KindAlreadyBooked,
		SeatID:    conflicts[0],
		Conflicts: conflicts,
		Msg:       fmt.Sprintf("seat %d already permanently booked", conflicts[0]),
	}
}

func confirmationFailed(cause error) *Error {
	return &Error{Kind: KindConfirmationFailed, Msg: "confirmation failed", Err: cause}
}

func dbWriteFailed(msg string, cause error) *Error {
	return &Error{Kind: KindDBWriteFailed, Msg: msg, Err: cause}
}
