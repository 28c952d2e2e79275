package model

import "testing"

func TestBookingStatus_CanTransition(t *testing.T) {
	allowed := map[BookingStatus][]BookingStatus{
		StatusPending:    {StatusAccepted, StatusRejected, StatusCancelled},
		StatusAccepted:   {StatusInProgress, StatusCancelled},
		StatusInProgress: {StatusCompleted, StatusCancelled},
		StatusCompleted:  {},
		StatusRejected:   {},
		StatusCancelled:  {},
	}

	all := []BookingStatus{
		StatusPending, StatusAccepted, StatusInProgress,
		StatusCompleted, StatusRejected, StatusCancelled,
	}

	for from, edges := range allowed {
		permitted := map[BookingStatus]bool{}
		for _, to := range edges {
			permitted[to] = true
		}
		for _, to := range all {
			got := from.CanTransition(to)
			if got != permitted[to] {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", from, to, got, permitted[to])
			}
		}
	}
}

func TestBookingStatus_IsTerminal(t *testing.T) {
	terminal := []BookingStatus{StatusCompleted, StatusRejected, StatusCancelled}
	nonTerminal := []BookingStatus{StatusPending, StatusAccepted, StatusInProgress}

	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	for _, s := range nonTerminal {
		if s.IsTerminal() {
			t.Errorf("expected %s to be non-terminal", s)
		}
	}
}

func TestBookingStatus_IsActive(t *testing.T) {
	// rejected and cancelled bookings release their time range
	if StatusRejected.IsActive() {
		t.Error("rejected should not be active")
	}
	if StatusCancelled.IsActive() {
		t.Error("cancelled should not be active")
	}
	for _, s := range ActiveStatuses() {
		if !s.IsActive() {
			t.Errorf("expected %s to be active", s)
		}
	}
}
