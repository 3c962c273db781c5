package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"slices"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBookingRepo(db), mock
}

func TestCreateConfirmedBookingSingleTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings (requester_id, show_id, status)")).
		WithArgs("alice", 1, "CONFIRMED").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO booking_seats (booking_id, show_id, seat_id) VALUES (?, ?, ?),(?, ?, ?)")).
		WithArgs(7, 1, 21, 7, 1, 22).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	id, err := repo.CreateConfirmedBooking(context.Background(), "alice", 1, []uint64{21, 22})
	if err != nil {
		t.Fatalf("CreateConfirmedBooking: %v", err)
	}
	if id != 7 {
		t.Fatalf("id = %d, want 7", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateConfirmedBookingRollsBackOnSeatInsertFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("INSERT INTO booking_seats").WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	if _, err := repo.CreateConfirmedBooking(context.Background(), "bob", 1, []uint64{5}); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateConfirmedBookingBeginFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	if _, err := repo.CreateConfirmedBooking(context.Background(), "bob", 1, []uint64{5}); !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("err = %v, want ErrConnDone", err)
	}
}

func TestFindConfirmedConflicts(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("bs.seat_id IN (?, ?, ?)")).
		WithArgs(1, 21, 22, 23).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(22))

	got, err := repo.FindConfirmedConflicts(context.Background(), 1, []uint64{21, 22, 23})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []uint64{22}) {
		t.Fatalf("conflicts = %v, want [22]", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFindConfirmedConflictsEmptyInputSkipsQuery(t *testing.T) {
	repo, mock := newMockRepo(t)
	got, err := repo.FindConfirmedConflicts(context.Background(), 1, nil)
	if err != nil || got != nil {
		t.Fatalf("got %v, %v", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM bookings WHERE id = ?").
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id", "requester_id", "show_id", "status", "created_at"}).
			AddRow(9, "alice", 1, "CONFIRMED", created))
	mock.ExpectQuery("FROM booking_seats WHERE booking_id = ?").
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(21).AddRow(22))

	b, err := repo.GetByID(context.Background(), 9)
	if err != nil {
		t.Fatal(err)
	}
	if b.RequesterID != "alice" || b.Status != "CONFIRMED" || !slices.Equal(b.SeatIDs, []uint64{21, 22}) {
		t.Fatalf("unexpected booking %+v", b)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM bookings WHERE id = ?").
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"id", "requester_id", "show_id", "status", "created_at"}))

	if _, err := repo.GetByID(context.Background(), 404); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("err = %v, want ErrBookingNotFound", err)
	}
}
