package model

import "time"

// SlotLock is a short-lived advisory lock keyed by slot coordinates.
// Creation relies on a unique _id insert; a duplicate key means another
// request is booking the same slot right now.
type SlotLock struct {
	ID        string    `json:"id" bson:"_id"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
