package user

import (
	"time"

	"bookreview/internal/store"
)

const RoleUser = "USER"

var (
	// ErrNotFound is returned when a user does not exist.
	ErrNotFound = store.NotFound("User not found")
	// ErrAlreadyExists is returned when the email is already registered.
	ErrAlreadyExists = &store.DuplicateKeyError{Field: "email"}
)

// User is an account that can author books and reviews.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
