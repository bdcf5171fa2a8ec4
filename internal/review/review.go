package review

import (
	"time"

	"bookreview/internal/store"
)

var (
	// ErrNotFound is returned when a review does not exist.
	ErrNotFound = store.NotFound("Review not found")
	// ErrNotOwned is returned when a review is missing or belongs to another user.
	// The two cases are indistinguishable to the caller.
	ErrNotOwned = store.NotFound("Review not found or not authorized")
	// ErrBookNotFound is returned when reviewing a book that does not exist.
	ErrBookNotFound = store.NotFound("Book not found")
	// ErrAlreadyReviewed is returned when the user already has a review on the book.
	ErrAlreadyReviewed = &store.ConflictError{Code: "ALREADY_REVIEWED", Message: "You have already reviewed this book"}
)

// BookRef is the reviewed book with its display fields resolved.
type BookRef struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
}

// UserRef is the review author with its display name resolved.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

// Review is one user's rating of one book.
type Review struct {
	ID        string    `json:"id"`
	Book      BookRef   `json:"book"`
	User      UserRef   `json:"user"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input is the client-authored part of a new review.
type Input struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// Patch changes the fields that are set.
type Patch struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// Filter narrows a review listing.
type Filter struct {
	BookID string
}
