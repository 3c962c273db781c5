package handler

import (
	"math/rand"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seat-lock-reservation/internal/reservation"
	"github.com/iliyamo/seat-lock-reservation/internal/simulation"
)

// SimulationHandler runs the contention simulation against either
// reservation path inside the server process.
type SimulationHandler struct {
	Secure reservation.Reserver
	Naive  reservation.Reserver
	// DefaultShowID is used when the request omits show_id.
	DefaultShowID uint64
}

type simulationRequest struct {
	Scenario string `json:"scenario" validate:"required,oneof=naive secure"`
	ShowID   uint64 `json:"show_id"`
	SeatID   uint64 `json:"seat_id"`
	Requests int    `json:"requests" validate:"gte=0,lte=500"` // caps one in-process run
}

// Run handles POST /v1/simulations.  Without seat_id a random seat in
// 50..99 is used so repeated runs do not collide with manual testing.
func (h *SimulationHandler) Run(c echo.Context) error {
	var body simulationRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid scenario"})
	}
	sc := simulation.Scenario{
		Path:     simulation.Path(body.Scenario),
		ShowID:   body.ShowID,
		SeatID:   body.SeatID,
		Requests: body.Requests,
	}
	if sc.ShowID == 0 {
		sc.ShowID = h.DefaultShowID
	}
	if sc.SeatID == 0 {
		sc.SeatID = uint64(50 + rand.Intn(50))
	}
	if sc.Requests == 0 {
		sc.Requests = simulation.DefaultRequests
	}

	target := h.Secure
	if sc.Path == simulation.PathNaive {
		target = h.Naive
	}
	rep := simulation.Run(c.Request().Context(), target, sc)
	return c.JSON(http.StatusOK, rep)
}
