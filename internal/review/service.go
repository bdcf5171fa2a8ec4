package review

import (
	"context"
	"errors"

	"bookreview/internal/pagination"
	"bookreview/internal/store"
	"bookreview/internal/validation"
)

// Service provides review business logic. Every successful mutation is followed
// by a recompute of the affected book's rating aggregate.
type Service struct {
	repo    Repository
	books   BookFinder
	ratings Recomputer
}

func NewService(repo Repository, books BookFinder, ratings Recomputer) *Service {
	return &Service{repo: repo, books: books, ratings: ratings}
}

func (s *Service) List(ctx context.Context, f Filter, p pagination.Params) (pagination.Page[Review], error) {
	return pagination.Paginate(ctx, s.repo.Query(f), p)
}

func (s *Service) Get(ctx context.Context, id string) (Review, error) {
	r, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Review{}, ErrNotFound
	}
	return r, err
}

func (s *Service) Create(ctx context.Context, bookID, actorID string, in Input) (Review, error) {
	if err := validation.Struct(in); err != nil {
		return Review{}, err
	}

	ok, err := s.books.Exists(ctx, bookID)
	if err != nil {
		return Review{}, err
	}
	if !ok {
		return Review{}, ErrBookNotFound
	}

	reviewed, err := s.repo.Exists(ctx, actorID, bookID)
	if err != nil {
		return Review{}, err
	}
	if reviewed {
		return Review{}, ErrAlreadyReviewed
	}

	r := Review{
		Book:    BookRef{ID: bookID},
		User:    UserRef{ID: actorID},
		Rating:  in.Rating,
		Comment: in.Comment,
	}
	if err := s.repo.Create(ctx, &r); err != nil {
		return Review{}, err
	}

	if err := s.ratings.Recompute(ctx, bookID); err != nil {
		return Review{}, err
	}
	return s.repo.GetByID(ctx, r.ID)
}

func (s *Service) Update(ctx context.Context, id, actorID string, p Patch) (Review, error) {
	if err := validation.Struct(p); err != nil {
		return Review{}, err
	}

	r, err := s.repo.UpdateOwned(ctx, id, actorID, p)
	if errors.Is(err, store.ErrNotFound) {
		return Review{}, ErrNotOwned
	}
	if err != nil {
		return Review{}, err
	}

	if err := s.ratings.Recompute(ctx, r.Book.ID); err != nil {
		return Review{}, err
	}
	return s.repo.GetByID(ctx, r.ID)
}

func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	bookID, err := s.repo.DeleteOwned(ctx, id, actorID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotOwned
	}
	if err != nil {
		return err
	}
	return s.ratings.Recompute(ctx, bookID)
}

// DeleteByBook removes every review of a book without touching its aggregate.
func (s *Service) DeleteByBook(ctx context.Context, bookID string) error {
	return s.repo.DeleteByBook(ctx, bookID)
}
