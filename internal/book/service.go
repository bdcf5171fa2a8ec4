package book

import (
	"context"
	"errors"
	"strings"

	"bookreview/internal/pagination"
	"bookreview/internal/review"
	"bookreview/internal/store"
	"bookreview/internal/validation"
)

// Service provides book-related business logic.
type Service struct {
	repo    Repository
	reviews Reviews
}

// NewService creates a new book service.
func NewService(repo Repository, reviews Reviews) *Service {
	return &Service{repo: repo, reviews: reviews}
}

// List returns a page of books matching the filter.
func (s *Service) List(ctx context.Context, f Filter, p pagination.Params) (pagination.Page[Book], error) {
	return pagination.Paginate(ctx, s.repo.Query(f), p)
}

// Search returns books whose title or author contains q, case-insensitively.
func (s *Service) Search(ctx context.Context, q string, p pagination.Params) (pagination.Page[Book], error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return pagination.Page[Book]{}, validation.New("q", "Please provide a search query using the 'q' parameter")
	}
	return pagination.Paginate(ctx, s.repo.Query(Filter{Search: q}), p)
}

// Get returns a book with a page of its reviews.
func (s *Service) Get(ctx context.Context, id string, p pagination.Params) (Detail, error) {
	b, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Detail{}, ErrNotFound
	}
	if err != nil {
		return Detail{}, err
	}

	reviews, err := s.reviews.List(ctx, review.Filter{BookID: id}, p)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Book: b, Reviews: reviews}, nil
}

// Create stores a new book attributed to actorID.
func (s *Service) Create(ctx context.Context, in Input, actorID string) (Book, error) {
	b := Book{
		Title:         in.Title,
		Author:        in.Author,
		Description:   in.Description,
		PublishedYear: in.PublishedYear,
		ISBN:          in.ISBN,
		Genre:         in.Genre,
		CreatedBy:     actorID,
	}
	b.normalize()
	if err := validation.Struct(b); err != nil {
		return Book{}, err
	}

	if err := s.repo.Create(ctx, &b); err != nil {
		return Book{}, err
	}
	return b, nil
}

// Update applies a partial change and re-validates the merged book.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Book, error) {
	b, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Book{}, ErrNotFound
	}
	if err != nil {
		return Book{}, err
	}

	p.Apply(&b)
	b.normalize()
	if err := validation.Struct(b); err != nil {
		return Book{}, err
	}

	if err := s.repo.Update(ctx, &b); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

// Delete removes the book's reviews, then the book.
func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	if err := s.reviews.DeleteByBook(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
