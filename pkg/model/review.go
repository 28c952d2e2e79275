package model

import (
	"time"
)

// Review is attached to exactly one completed booking by its client.
type Review struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID      string    `json:"booking_id" bson:"booking_id" validate:"required"`
	ClientID       string    `json:"client_id" bson:"client_id" validate:"required"`
	ProfessionalID string    `json:"professional_id" bson:"professional_id" validate:"required"`
	Rating         int       `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Comment        string    `json:"comment" bson:"comment" validate:"max=2000"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}
