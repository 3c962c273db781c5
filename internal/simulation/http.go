package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/seat-lock-reservation/internal/reservation"
)

// ErrThrottled is returned when the server's rate limiter rejects an
// attempt with 429.  No reservation ran, so it carries no reservation
// Kind; Run tabulates it as KindThrottled.
var ErrThrottled = errors.New("rate limited by server")

// ThrottledError is the concrete 429 outcome.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("%v (retry after %s)", ErrThrottled, e.RetryAfter)
}

func (e *ThrottledError) Is(target error) bool { return target == ErrThrottled }

// HTTPReserver sends reservation attempts to a running server so the
// driver can exercise the full network path.
type HTTPReserver struct {
	BaseURL string
	Path    Path
	Client  *http.Client
}

// NewHTTPReserver returns an HTTPReserver with a 30s client timeout.
func NewHTTPReserver(baseURL string, path Path) *HTTPReserver {
	return &HTTPReserver{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Path:    path,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type wireRequest struct {
	RequesterID     string   `json:"requester_id"`
	ShowID          uint64   `json:"show_id"`
	SeatIDs         []uint64 `json:"seat_ids"`
	FailureInjected bool     `json:"failure_injected,omitempty"`
}

type wireResponse struct {
	Success    bool             `json:"success"`
	BookingID  uint64           `json:"booking_id"`
	Error      reservation.Kind `json:"error"`
	Message    string           `json:"message"`
	SeatID     uint64           `json:"seat_id"`
	HeldBySelf bool             `json:"held_by_self"`
}

// Reserve implements reservation.Reserver over HTTP.  Transport errors
// are reported without a Kind and a 429 as *ThrottledError.
func (h *HTTPReserver) Reserve(ctx context.Context, req reservation.Request) (reservation.Result, error) {
	body, err := json.Marshal(wireRequest{
		RequesterID:     req.RequesterID,
		ShowID:          req.ShowID,
		SeatIDs:         req.SeatIDs,
		FailureInjected: req.FailureInjected,
	})
	if err != nil {
		return reservation.Result{}, err
	}
	url := fmt.Sprintf("%s/v1/bookings/%s", h.BaseURL, h.Path)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return reservation.Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(httpReq)
	if err != nil {
		return reservation.Result{}, fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return reservation.Result{}, &ThrottledError{RetryAfter: time.Duration(secs) * time.Second}
	}

	var out wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return reservation.Result{}, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if out.Success {
		return reservation.Result{BookingID: out.BookingID}, nil
	}
	return reservation.Result{}, &reservation.Error{
		Kind:       out.Error,
		SeatID:     out.SeatID,
		HeldBySelf: out.HeldBySelf,
		Msg:        out.Message,
	}
}
