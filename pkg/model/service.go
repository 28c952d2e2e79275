package model

import (
	"time"
)

type PriceType string

const (
	PriceFixed      PriceType = "fixed"
	PriceHourly     PriceType = "hourly"
	PriceNegotiable PriceType = "negotiable"
)

// Service is a professional's published offering. Pricing is read once at
// booking creation and never recomputed afterwards.
type Service struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ProfessionalID string    `json:"professional_id" bson:"professional_id" validate:"required"`
	CategoryID     string    `json:"category_id" bson:"category_id" validate:"required"`
	Title          string    `json:"title" bson:"title" validate:"required,min=2,max=100"`
	Description    string    `json:"description" bson:"description" validate:"required,min=2,max=2000"`
	PriceType      PriceType `json:"price_type" bson:"price_type" validate:"required,oneof=fixed hourly negotiable"`
	Price          *float64  `json:"price,omitempty" bson:"price,omitempty" validate:"omitempty,gt=0"`
	HourlyRate     *float64  `json:"hourly_rate,omitempty" bson:"hourly_rate,omitempty" validate:"omitempty,gt=0"`
	Location       string    `json:"location" bson:"location" validate:"required,min=2,max=200"`
	IsActive       bool      `json:"is_active" bson:"is_active"`
	Tags           []string  `json:"tags,omitempty" bson:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=40"`
	Rating         float64   `json:"rating" bson:"rating"`
	ReviewCount    int       `json:"review_count" bson:"review_count"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// ServiceUpdate is an explicit patch object: only named optional fields,
// nil/empty meaning "leave unchanged".
type ServiceUpdate struct {
	CategoryID  string    `json:"category_id,omitempty" validate:"omitempty"`
	Title       string    `json:"title,omitempty" validate:"omitempty,min=2,max=100"`
	Description string    `json:"description,omitempty" validate:"omitempty,min=2,max=2000"`
	PriceType   PriceType `json:"price_type,omitempty" validate:"omitempty,oneof=fixed hourly negotiable"`
	Price       *float64  `json:"price,omitempty" validate:"omitempty,gt=0"`
	HourlyRate  *float64  `json:"hourly_rate,omitempty" validate:"omitempty,gt=0"`
	Location    string    `json:"location,omitempty" validate:"omitempty,min=2,max=200"`
	IsActive    *bool     `json:"is_active,omitempty"`
	Tags        *[]string `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=40"`
}
