package model

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusConfirmed, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCompleted, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusNoShow, StatusCancelled, false},
		{"bogus", StatusCancelled, false},
		{StatusConfirmed, "bogus", false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCountsAsBusy(t *testing.T) {
	busy := []string{StatusConfirmed, StatusCompleted, StatusNoShow}
	for _, status := range busy {
		if !CountsAsBusy(status) {
			t.Errorf("%s must count as busy", status)
		}
	}
	if CountsAsBusy(StatusCancelled) {
		t.Error("cancelled must not count as busy")
	}
}

func TestAdmissionRequestReservation(t *testing.T) {
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	req := &AdmissionRequest{
		ProviderID:    "64f000000000000000000001",
		ServiceID:     "64f000000000000000000002",
		StartTime:     start,
		EndTime:       start.Add(30 * time.Minute),
		CustomerName:  "Dana",
		CustomerPhone: "+14155550123",
	}

	reservation := req.Reservation()
	if reservation.Status != StatusConfirmed {
		t.Errorf("expected confirmed, got %s", reservation.Status)
	}
	if reservation.Version != 1 {
		t.Errorf("expected version 1, got %d", reservation.Version)
	}
	if reservation.ID != "" {
		t.Errorf("expected no ID before persistence, got %s", reservation.ID)
	}
	if !reservation.StartTime.Equal(start) || !reservation.EndTime.Equal(start.Add(30*time.Minute)) {
		t.Error("expected the admitted range to carry over unchanged")
	}
}
