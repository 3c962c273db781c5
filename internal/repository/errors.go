// Package repository defines the durable stores behind seat
// reservation: bookings (the source of truth for availability) and the
// read-only show/seat catalog.  Each store has a MySQL implementation
// and an in-memory one with the same behavior.
package repository

import "errors"

// ErrBookingNotFound is returned when a booking lookup yields no rows.
// Handlers should translate this into an HTTP 404 response.
var ErrBookingNotFound = errors.New("booking not found")

// ErrShowNotFound is returned when a show lookup yields no rows.
var ErrShowNotFound = errors.New("show not found")

// ErrUnknownSeat is returned by the in-memory booking store when a seat
// or show is not in its catalog, matching the foreign key rejection of
// the MySQL schema.
var ErrUnknownSeat = errors.New("seat not in catalog")
