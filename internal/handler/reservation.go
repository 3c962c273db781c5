package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seat-lock-reservation/internal/model"
	"github.com/iliyamo/seat-lock-reservation/internal/repository"
	"github.com/iliyamo/seat-lock-reservation/internal/reservation"
)

// BookingReader is the read side of the booking store.
type BookingReader interface {
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	BookedSeatIDs(ctx context.Context, showID uint64) ([]uint64, error)
}

// Catalog resolves shows and their seats.
type Catalog interface {
	GetShow(ctx context.Context, showID uint64) (*model.Show, error)
	ListSeatsByShow(ctx context.Context, showID uint64) ([]model.Seat, error)
}

// LockPeeker reports the holders of live seat locks in one round trip.
// Keys without a live lock are absent from the result.
type LockPeeker interface {
	PeekMany(ctx context.Context, keys []string) (map[string]string, error)
}

// ReservationHandler serves the reservation API: secure and naive
// booking, booking lookup and the per-show seat map.
type ReservationHandler struct {
	Secure   reservation.Reserver
	Naive    reservation.Reserver
	Bookings BookingReader
	Catalog  Catalog
	Locks    LockPeeker
}

// NewReservationHandler constructs a ReservationHandler.  All
// dependencies must be non-nil.
func NewReservationHandler(secure, naive reservation.Reserver, bookings BookingReader, catalog Catalog, locks LockPeeker) *ReservationHandler {
	if secure == nil || naive == nil || bookings == nil || catalog == nil || locks == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Secure: secure, Naive: naive, Bookings: bookings, Catalog: catalog, Locks: locks}
}

// bookingRequest is the body of POST /v1/bookings/{secure,naive}.
type bookingRequest struct {
	RequesterID     string   `json:"requester_id" validate:"required,max=191"`
	ShowID          uint64   `json:"show_id" validate:"required,gt=0"`
	SeatIDs         []uint64 `json:"seat_ids" validate:"required,min=1,unique,dive,gt=0"`
	FailureInjected bool     `json:"failure_injected"`
}

// statusFor maps a failure kind to its HTTP status.
func statusFor(k reservation.Kind) int {
	switch k {
	case reservation.KindInvalidRequest:
		return http.StatusBadRequest
	case reservation.KindSeatHeld, reservation.KindConflict:
		return http.StatusConflict
	case reservation.KindAlreadyBooked:
		return http.StatusGone
	case reservation.KindConfirmationFailed:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// BookSecure handles POST /v1/bookings/secure.
func (h *ReservationHandler) BookSecure(c echo.Context) error {
	return h.book(c, h.Secure, "Booked successfully (secure)")
}

// BookNaive handles POST /v1/bookings/naive.  It exists to demonstrate
// double booking and must not back a real client.
func (h *ReservationHandler) BookNaive(c echo.Context) error {
	return h.book(c, h.Naive, "Booked successfully (naive)")
}

func (h *ReservationHandler) book(c echo.Context, r reservation.Reserver, okMsg string) error {
	var body bookingRequest
	if err := c.Bind(&body); err != nil {
		return invalidBody(c, "invalid request body")
	}
	if err := c.Validate(&body); err != nil {
		return invalidBody(c, err.Error())
	}
	res, err := r.Reserve(c.Request().Context(), reservation.Request{
		RequesterID:     body.RequesterID,
		ShowID:          body.ShowID,
		SeatIDs:         body.SeatIDs,
		FailureInjected: body.FailureInjected,
	})
	if err != nil {
		return reservationFailure(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"booking_id": res.BookingID,
		"message":    okMsg,
	})
}

func invalidBody(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"success": false,
		"error":   reservation.KindInvalidRequest,
		"message": msg,
	})
}

// reservationFailure renders a failed attempt.  Only the kind and the
// public message are exposed; store errors stay in the server log.
func reservationFailure(c echo.Context, err error) error {
	var re *reservation.Error
	if !errors.As(err, &re) {
		c.Logger().Errorf("reservation: unclassified error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"error":   reservation.KindDBWriteFailed,
			"message": "internal server error",
		})
	}
	if re.Err != nil {
		c.Logger().Warnf("reservation: %v", err)
	}
	out := echo.Map{
		"success": false,
		"error":   re.Kind,
		"message": re.Msg,
	}
	switch re.Kind {
	case reservation.KindSeatHeld:
		out["seat_id"] = re.SeatID
		out["held_by_self"] = re.HeldBySelf
	case reservation.KindAlreadyBooked, reservation.KindConflict:
		out["seat_id"] = re.SeatID
		out["conflicts"] = re.Conflicts
	}
	return c.JSON(statusFor(re.Kind), out)
}

// GetBooking handles GET /v1/bookings/:id.
func (h *ReservationHandler) GetBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": b})
}

type seatView struct {
	ID            uint64  `json:"id"`
	Label         string  `json:"label"`
	SeatType      string  `json:"seat_type"`
	PriceModifier float64 `json:"price_modifier"`
	Booked        bool    `json:"booked"`
	Held          bool    `json:"held"`
}

type seatRow struct {
	Row   string     `json:"row"`
	Seats []seatView `json:"seats"`
}

// GetShowSeats handles GET /v1/shows/:id/seats.  Booked comes from the
// durable store; Held reports a live lock and is advisory only.
func (h *ReservationHandler) GetShowSeats(c echo.Context) error {
	showID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || showID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	ctx := c.Request().Context()
	show, err := h.Catalog.GetShow(ctx, showID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	seats, err := h.Catalog.ListSeatsByShow(ctx, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seats"})
	}
	bookedIDs, err := h.Bookings.BookedSeatIDs(ctx, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	booked := make(map[uint64]bool, len(bookedIDs))
	for _, id := range bookedIDs {
		booked[id] = true
	}

	keys := make([]string, 0, len(seats))
	for _, s := range seats {
		if !booked[s.ID] {
			keys = append(keys, reservation.LockKey(showID, s.ID))
		}
	}
	held, err := h.Locks.PeekMany(ctx, keys)
	if err != nil {
		// an unreachable lock store just leaves seats shown as free
		held = nil
	}

	rows := make([]seatRow, 0)
	for _, s := range seats {
		v := seatView{
			ID:            s.ID,
			Label:         s.RowLabel + strconv.FormatUint(uint64(s.SeatNumber), 10),
			SeatType:      s.SeatType,
			PriceModifier: s.PriceModifier,
			Booked:        booked[s.ID],
		}
		if !v.Booked {
			_, v.Held = held[reservation.LockKey(showID, s.ID)]
		}
		if n := len(rows); n == 0 || rows[n-1].Row != s.RowLabel {
			rows = append(rows, seatRow{Row: s.RowLabel})
		}
		rows[len(rows)-1].Seats = append(rows[len(rows)-1].Seats, v)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"show":  show,
		"rows":  rows,
		"total": len(seats),
	})
}
