package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Booking records a requester's claim on a set of seats for one show.
// Once CONFIRMED it is the source of truth for seat availability: a
// seat is taken for a show when it appears in a CONFIRMED booking for
// that show.
//
// Fields:
//  ID          – primary key identifier.
//  RequesterID – opaque identity of the party that booked.
//  ShowID      – show being booked.
//  Status      – PENDING, CONFIRMED or CANCELLED.
//  SeatIDs     – seats claimed by the booking (booking_seats rows).
//  CreatedAt   – creation timestamp.
type Booking struct {
	ID          uint64        `json:"id"`           // bookings.id
	RequesterID string        `json:"requester_id"` // bookings.requester_id
	ShowID      uint64        `json:"show_id"`      // bookings.show_id
	Status      BookingStatus `json:"status"`       // bookings.status
	SeatIDs     []uint64      `json:"seat_ids"`     // booking_seats.seat_id
	CreatedAt   time.Time     `json:"created_at"`   // bookings.created_at
}
