package model

import (
	"time"
)

type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusAccepted   BookingStatus = "accepted"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusRejected   BookingStatus = "rejected"
	StatusCancelled  BookingStatus = "cancelled"
)

// transitions lists the outgoing edges of the booking state machine.
// Terminal states (completed, rejected, cancelled) have none.
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether the state machine allows moving from s to next.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsActive reports whether a booking in this status still occupies its
// time range. Rejected and cancelled bookings release their range.
func (s BookingStatus) IsActive() bool {
	return s != StatusRejected && s != StatusCancelled
}

// ActiveStatuses is the set of statuses counted when checking range occupancy.
func ActiveStatuses() []BookingStatus {
	return []BookingStatus{StatusPending, StatusAccepted, StatusInProgress, StatusCompleted}
}

type Booking struct {
	ID              string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ClientID        string        `json:"client_id" bson:"client_id" validate:"required"`
	ProfessionalID  string        `json:"professional_id" bson:"professional_id" validate:"required"`
	ServiceID       string        `json:"service_id" bson:"service_id" validate:"required"`
	Date            string        `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	StartTime       string        `json:"start_time" bson:"start_time" validate:"required"`
	EndTime         string        `json:"end_time" bson:"end_time" validate:"required"`
	Hours           int           `json:"hours" bson:"hours" validate:"required,min=1,max=24"`
	TotalPrice      float64       `json:"total_price" bson:"total_price" validate:"min=0"`
	Status          BookingStatus `json:"status" bson:"status" validate:"required,oneof=pending accepted in_progress completed rejected cancelled"`
	Description     string        `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	AcceptedAt      *time.Time    `json:"accepted_at,omitempty" bson:"accepted_at,omitempty"`
	RejectedAt      *time.Time    `json:"rejected_at,omitempty" bson:"rejected_at,omitempty"`
	RejectionReason string        `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	ReviewID        string        `json:"review_id,omitempty" bson:"review_id,omitempty"`
}

// BookingRequest is the client-facing payload for creating a booking.
// Pricing and the professional are resolved from the referenced service.
type BookingRequest struct {
	ClientID    string `json:"client_id" validate:"required"`
	ServiceID   string `json:"service_id" validate:"required,mongodb"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"start_time" validate:"required"`
	Hours       int    `json:"hours" validate:"required,min=1,max=24"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
}
