package model

import (
	"time"
)

// AvailabilityRule is a recurring weekly open window for one professional.
// At most one rule exists per (professional, day of week); setting the week
// replaces all rules wholesale.
type AvailabilityRule struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty"`
	ProfessionalID string    `json:"professional_id" bson:"professional_id" validate:"required"`
	DayOfWeek      int       `json:"day_of_week" bson:"day_of_week" validate:"min=0,max=6"`
	StartTime      string    `json:"start_time" bson:"start_time"`
	EndTime        string    `json:"end_time" bson:"end_time"`
	IsAvailable    bool      `json:"is_available" bson:"is_available"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

type BlockReason string

const (
	ReasonBooking     BlockReason = "booking"
	ReasonPersonal    BlockReason = "personal"
	ReasonMaintenance BlockReason = "maintenance"
)

// BlockedSlot renders a date-specific time range unavailable. Slots with
// reason "booking" are system-owned: they carry the originating BookingID
// and are only removed by rejecting or cancelling that booking.
type BlockedSlot struct {
	ID             string      `json:"id,omitempty" bson:"_id,omitempty"`
	ProfessionalID string      `json:"professional_id" bson:"professional_id" validate:"required"`
	BookingID      string      `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	Date           string      `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	StartTime      string      `json:"start_time" bson:"start_time" validate:"required"`
	EndTime        string      `json:"end_time" bson:"end_time" validate:"required"`
	Reason         BlockReason `json:"reason" bson:"reason" validate:"required,oneof=booking personal maintenance"`
	CreatedAt      time.Time   `json:"created_at" bson:"created_at"`
}

// BlockSlotRequest is the professional-facing payload for manual blocks.
// Booking-derived blocks are never created through this path.
type BlockSlotRequest struct {
	Date      string      `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string      `json:"start_time" validate:"required"`
	EndTime   string      `json:"end_time" validate:"required"`
	Reason    BlockReason `json:"reason,omitempty" validate:"omitempty,oneof=personal maintenance"`
}

// AvailableSlot is one bookable start option returned by slot listing.
type AvailableSlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Duration  int    `json:"duration"`
}
