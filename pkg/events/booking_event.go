package events

import "time"

// Topics for the booking event stream
const (
	TopicBookingEvents    = "servipro.booking-events"
	TopicBookingEventsDLQ = "servipro.booking-events.dlq"
)

// Event types carried in the event-type header
const (
	EventBookingCreated   = "booking.created"
	EventBookingAccepted  = "booking.accepted"
	EventBookingRejected  = "booking.rejected"
	EventBookingStarted   = "booking.started"
	EventBookingCompleted = "booking.completed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingReviewed  = "booking.reviewed"
)

const BookingEventSchemaVersion = "1"

// BookingEvent is the payload for all booking lifecycle events.
// Consumers switch on the event-type header, not the payload.
type BookingEvent struct {
	BookingID      string    `json:"booking_id"`
	ClientID       string    `json:"client_id"`
	ProfessionalID string    `json:"professional_id"`
	ServiceID      string    `json:"service_id,omitempty"`
	Date           string    `json:"date"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	Status         string    `json:"status"`
	Reason         string    `json:"reason,omitempty"`
	Rating         int       `json:"rating,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewBookingMessage builds a publish-ready message keyed by booking ID so
// events for one booking stay ordered within a partition.
func NewBookingMessage(eventType string, source string, payload BookingEvent) Message {
	return NewMessage().
		WithKey(payload.BookingID).
		WithValue(payload).
		WithEventType(eventType).
		WithEventID("").
		WithSchemaVersion(BookingEventSchemaVersion).
		WithSource(source).
		Build()
}
