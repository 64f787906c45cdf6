package models

import (
	"time"

	"github.com/google/uuid"
)

// DemoUserID is the fixed identity that owns courses generated without a
// signed-in user (or with the "anonymous" sentinel).
var DemoUserID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

// DefaultUserCredit is the credit balance granted to auto-created users.
const DefaultUserCredit = 5

// User is the minimal identity record the pipeline needs. Users are
// auto-created on first reference from an unknown identity.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Credit    int       `json:"credit"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDemoUser returns the record inserted when the demo identity is first
// referenced.
func NewDemoUser() *User {
	return &User{
		ID:     DemoUserID,
		Name:   "Demo User",
		Email:  "demo@learnaistudio.com",
		Credit: DefaultUserCredit,
	}
}

// NewSyntheticUser returns the record inserted for an identity that arrived
// outside the expected key format and had a fresh UUID synthesized for it.
func NewSyntheticUser(id uuid.UUID) *User {
	return &User{
		ID:     id,
		Name:   "User",
		Email:  "user-" + id.String() + "@learnaistudio.com",
		Credit: DefaultUserCredit,
	}
}
