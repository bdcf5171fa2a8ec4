package book

import (
	"context"

	"bookreview/internal/pagination"
	"bookreview/internal/review"
)

//go:generate mockgen -source=ports.go -destination=mock_repository_test.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	Query(f Filter) pagination.Source[Book]
	GetByID(ctx context.Context, id string) (Book, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, b *Book) error
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id string) error
}

// Reviews is the slice of review operations a book needs.
type Reviews interface {
	List(ctx context.Context, f review.Filter, p pagination.Params) (pagination.Page[review.Review], error)
	DeleteByBook(ctx context.Context, bookID string) error
}
