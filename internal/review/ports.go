package review

import (
	"context"

	"bookreview/internal/pagination"
)

// Repository defines the contract for review data storage. Display fields of
// returned reviews are resolved.
type Repository interface {
	// Query lists reviews newest first.
	Query(f Filter) pagination.Source[Review]
	GetByID(ctx context.Context, id string) (Review, error)
	Exists(ctx context.Context, userID, bookID string) (bool, error)
	Create(ctx context.Context, r *Review) error
	// UpdateOwned applies p only when the review belongs to userID. Only the id
	// and book id of the result are set.
	UpdateOwned(ctx context.Context, id, userID string, p Patch) (Review, error)
	// DeleteOwned removes the review when it belongs to userID and returns its book id.
	DeleteOwned(ctx context.Context, id, userID string) (string, error)
	DeleteByBook(ctx context.Context, bookID string) error
}

// BookFinder checks that a reviewed book exists.
type BookFinder interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Recomputer refreshes a book's rating aggregate.
type Recomputer interface {
	Recompute(ctx context.Context, bookID string) error
}
