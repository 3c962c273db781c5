package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"net/http" // net/http provides status codes and response helpers
	"time"

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Check probes one dependency.  A nil error means healthy.
type Check func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes for load balancers
// and monitoring systems.
type HealthHandler struct {
	Checks  map[string]Check
	Timeout time.Duration
}

// NewHealthHandler returns a HealthHandler with a 2s probe timeout.
func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{Checks: checks, Timeout: 2 * time.Second}
}

// Live reports that the process is serving requests.
func (h *HealthHandler) Live(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready runs every check and answers 503 when any of them fails, so an
// instance without its lock store or database is taken out of rotation.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.Checks))
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	return c.JSON(status, echo.Map{"checks": results})
}
