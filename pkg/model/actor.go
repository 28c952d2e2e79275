package model

type ActorRole string

const (
	RoleClient       ActorRole = "client"
	RoleProfessional ActorRole = "professional"
)

// Actor identifies who is performing an operation. IDs arrive already
// resolved by the identity provider; the core never sees credentials.
type Actor struct {
	ID   string    `json:"id" validate:"required"`
	Role ActorRole `json:"role" validate:"required,oneof=client professional"`
}
