package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/seat-lock-reservation/internal/model"
)

// BookingRepo persists bookings in the bookings and booking_seats
// tables.  booking_seats has no unique (show_id, seat_id) key: the
// secure controller guarantees exclusivity, and the naive path must be
// able to double book.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// FindConfirmedConflicts returns, in ascending order, the seats among
// seatIDs that belong to a CONFIRMED booking for the show.
func (r *BookingRepo) FindConfirmedConflicts(ctx context.Context, showID uint64, seatIDs []uint64) ([]uint64, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	q := `SELECT DISTINCT bs.seat_id
	      FROM booking_seats bs
	      JOIN bookings b ON b.id = bs.booking_id
	      WHERE b.show_id = ? AND b.status = 'CONFIRMED' AND bs.seat_id IN (` + placeholders(len(seatIDs)) + `)
	      ORDER BY bs.seat_id`
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, showID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	return r.querySeatIDs(ctx, q, args...)
}

// BookedSeatIDs returns every seat in a CONFIRMED booking for the show.
func (r *BookingRepo) BookedSeatIDs(ctx context.Context, showID uint64) ([]uint64, error) {
	const q = `SELECT DISTINCT bs.seat_id
	           FROM booking_seats bs
	           JOIN bookings b ON b.id = bs.booking_id
	           WHERE b.show_id = ? AND b.status = 'CONFIRMED'
	           ORDER BY bs.seat_id`
	return r.querySeatIDs(ctx, q, showID)
}

func (r *BookingRepo) querySeatIDs(ctx context.Context, q string, args ...interface{}) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// CreateConfirmedBooking inserts the booking row and one booking_seats
// row per seat inside a single transaction.
func (r *BookingRepo) CreateConfirmedBooking(ctx context.Context, requesterID string, showID uint64, seatIDs []uint64) (uint64, error) {
	if len(seatIDs) == 0 {
		return 0, errors.New("booking requires at least one seat")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (requester_id, show_id, status) VALUES (?, ?, ?)`,
		requesterID, showID, string(model.BookingConfirmed),
	)
	if err != nil {
		return 0, fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("booking id: %w", err)
	}

	query := `INSERT INTO booking_seats (booking_id, show_id, seat_id) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*3)
	for i, sid := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, id, showID, sid)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("insert booking seats: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return uint64(id), nil
}

// GetByID loads a booking and its seats.  ErrBookingNotFound is
// returned when no booking has the id.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT id, requester_id, show_id, status, created_at FROM bookings WHERE id = ?`
	var b model.Booking
	var status string
	var created time.Time
	err := r.db.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.RequesterID, &b.ShowID, &status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	b.CreatedAt = created.UTC()
	seats, err := r.querySeatIDs(ctx, `SELECT seat_id FROM booking_seats WHERE booking_id = ? ORDER BY seat_id`, id)
	if err != nil {
		return nil, err
	}
	b.SeatIDs = seats
	return &b, nil
}
