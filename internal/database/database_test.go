package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMigrateRunsEveryStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"movies", "theaters", "screens", "seats", "shows", "bookings", "booking_seats"} {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + table + " (")).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMigrateStopsOnError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS movies").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS theaters").WillReturnError(errors.New("denied"))

	err := Migrate(context.Background(), db)
	if err == nil || !regexp.MustCompile(`step 2`).MatchString(err.Error()) {
		t.Fatalf("expected step 2 error, got %v", err)
	}
}

func TestSeedInsertsCatalog(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM movies")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO movies").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO theaters").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO screens").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO seats").WillReturnResult(sqlmock.NewResult(100, 100))
	mock.ExpectExec("INSERT INTO shows").WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	showID, err := Seed(context.Background(), db)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if showID != 3 {
		t.Fatalf("expected show id 3, got %d", showID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSeedSkipsWhenPresent(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM movies")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT id FROM shows").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	showID, err := Seed(context.Background(), db)
	if err != nil || showID != 1 {
		t.Fatalf("expected existing show 1, got %d %v", showID, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSeedRollsBackOnFailure(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM movies")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO movies").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO theaters").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	if _, err := Seed(context.Background(), db); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDSN(t *testing.T) {
	got := DSN("app", "", "db", "3306", "seats")
	for _, want := range []string{"app@tcp(db:3306)/seats", "parseTime=true", "charset=utf8mb4"} {
		if !regexp.MustCompile(regexp.QuoteMeta(want)).MatchString(got) {
			t.Fatalf("DSN %q missing %q", got, want)
		}
	}
	if got := DSN("app", "s3cret", "db", "3306", "seats"); !regexp.MustCompile(`^app:s3cret@`).MatchString(got) {
		t.Fatalf("password not in DSN: %q", got)
	}
}
