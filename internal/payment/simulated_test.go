package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/seat-lock-reservation/internal/reservation"
)

func TestSimulatedConfirm(t *testing.T) {
	tests := []struct {
		name    string
		inject  bool
		wantErr error
	}{
		{"success", false, nil},
		{"injected failure", true, ErrPaymentDeclined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Simulated{Delay: time.Millisecond}
			err := s.Confirm(context.Background(), reservation.Request{FailureInjected: tt.inject})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSimulatedConfirmHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := Simulated{Delay: time.Minute}.Confirm(ctx, reservation.Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("cancelled confirm did not return promptly")
	}
}
