package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seat-lock-reservation/internal/lockstore"
	"github.com/iliyamo/seat-lock-reservation/internal/payment"
	"github.com/iliyamo/seat-lock-reservation/internal/repository"
	"github.com/iliyamo/seat-lock-reservation/internal/reservation"
	"github.com/iliyamo/seat-lock-reservation/internal/simulation"
)

func TestSimulationSecure(t *testing.T) {
	bookings := repository.NewMemoryBookingStore()
	s := &SimulationHandler{
		Secure:        reservation.NewController(lockstore.NewMemoryStore(), bookings, payment.Simulated{}),
		Naive:         reservation.NewNaive(bookings, 0),
		DefaultShowID: 1,
	}
	e := echo.New()
	e.Validator = NewRequestValidator()
	e.POST("/v1/simulations", s.Run)

	req := httptest.NewRequest(http.MethodPost, "/v1/simulations", strings.NewReader(`{"scenario":"secure","seat_id":77,"requests":10}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var rep simulation.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.Successes != 1 || rep.SeatID != 77 || rep.Requests != 10 || rep.ShowID != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestSimulationRejectsBadBodies(t *testing.T) {
	s := &SimulationHandler{DefaultShowID: 1}
	e := echo.New()
	e.Validator = NewRequestValidator()
	e.POST("/v1/simulations", s.Run)

	for _, body := range []string{
		`{"scenario":"chaos"}`,
		`{"scenario":"secure","requests":501}`,
		`{"scenario":"naive","requests":-1}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/v1/simulations", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}
}
