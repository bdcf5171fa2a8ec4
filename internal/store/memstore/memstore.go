// Package memstore keeps users, books and reviews in process memory. It
// implements the same repository contracts as the Postgres adapters and backs
// STORE_DRIVER=memory as well as service tests.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/pagination"
	"bookreview/internal/rating"
	"bookreview/internal/review"
	"bookreview/internal/store"
	"bookreview/internal/user"

	"github.com/google/uuid"
)

type Store struct {
	mu      sync.RWMutex
	users   map[string]user.User
	books   map[string]book.Book
	reviews map[string]review.Review
	revoked map[string]time.Time
	last    time.Time
}

func New() *Store {
	return &Store{
		users:   make(map[string]user.User),
		books:   make(map[string]book.Book),
		reviews: make(map[string]review.Review),
		revoked: make(map[string]time.Time),
	}
}

// tick returns a strictly increasing timestamp so creation order is total.
// Callers hold the write lock.
func (s *Store) tick() time.Time {
	now := time.Now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Nanosecond)
	}
	s.last = now
	return now
}

func (s *Store) Books() *BookRepo { return &BookRepo{s} }

func (s *Store) Reviews() *ReviewRepo { return &ReviewRepo{s} }

func (s *Store) Ratings() *RatingStore { return &RatingStore{s} }

func (s *Store) Users() *UserRepo { return &UserRepo{s} }

func (s *Store) Revocations() *RevocationStore { return &RevocationStore{s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

var (
	_ book.Repository   = (*BookRepo)(nil)
	_ review.Repository = (*ReviewRepo)(nil)
	_ review.BookFinder = (*BookRepo)(nil)
	_ rating.Store      = (*RatingStore)(nil)
	_ user.Repository   = (*UserRepo)(nil)
	_ auth.Revocations  = (*RevocationStore)(nil)
)

// source re-reads the store on every call, like a query descriptor would.
type source[T any] struct {
	load func() []T
}

func (q source[T]) Count(ctx context.Context) (int, error) {
	return pagination.FromSlice(q.load()).Count(ctx)
}

func (q source[T]) Fetch(ctx context.Context, offset, limit int) ([]T, error) {
	return pagination.FromSlice(q.load()).Fetch(ctx, offset, limit)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func cloneBook(b book.Book) book.Book {
	b.Genre = slices.Clone(b.Genre)
	if b.Genre == nil {
		b.Genre = []string{}
	}
	if b.ISBN != nil {
		isbn := *b.ISBN
		b.ISBN = &isbn
	}
	if b.PublishedYear != nil {
		year := *b.PublishedYear
		b.PublishedYear = &year
	}
	return b
}

type BookRepo struct{ s *Store }

func matchBook(b book.Book, f book.Filter) bool {
	if f.Author != "" && !containsFold(b.Author, f.Author) {
		return false
	}
	if len(f.Genres) > 0 && !slices.ContainsFunc(f.Genres, func(g string) bool {
		return slices.Contains(b.Genre, g)
	}) {
		return false
	}
	if f.Search != "" && !containsFold(b.Title, f.Search) && !containsFold(b.Author, f.Search) {
		return false
	}
	return true
}

func (r *BookRepo) Query(f book.Filter) pagination.Source[book.Book] {
	return source[book.Book]{load: func() []book.Book {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()

		out := make([]book.Book, 0, len(r.s.books))
		for _, b := range r.s.books {
			if matchBook(b, f) {
				out = append(out, cloneBook(b))
			}
		}
		slices.SortFunc(out, func(a, b book.Book) int {
			if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
				return c
			}
			return strings.Compare(a.ID, b.ID)
		})
		return out
	}}
}

func (r *BookRepo) GetByID(_ context.Context, id string) (book.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.books[id]
	if !ok {
		return book.Book{}, store.ErrNotFound
	}
	return cloneBook(b), nil
}

func (r *BookRepo) Exists(_ context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.books[id]
	return ok, nil
}

// isbnTaken reports whether another book already uses isbn. Callers hold the lock.
func (r *BookRepo) isbnTaken(isbn *string, exceptID string) bool {
	if isbn == nil {
		return false
	}
	for id, b := range r.s.books {
		if id != exceptID && b.ISBN != nil && *b.ISBN == *isbn {
			return true
		}
	}
	return false
}

func (r *BookRepo) Create(_ context.Context, b *book.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.isbnTaken(b.ISBN, "") {
		return &store.DuplicateKeyError{Field: "isbn"}
	}

	now := r.s.tick()
	b.ID = uuid.NewString()
	b.AverageRating = 0
	b.TotalReviews = 0
	b.CreatedAt = now
	b.UpdatedAt = now
	r.s.books[b.ID] = cloneBook(*b)
	*b = cloneBook(*b)
	return nil
}

func (r *BookRepo) Update(_ context.Context, b *book.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.books[b.ID]
	if !ok {
		return store.ErrNotFound
	}
	if r.isbnTaken(b.ISBN, b.ID) {
		return &store.DuplicateKeyError{Field: "isbn"}
	}

	current.Title = b.Title
	current.Author = b.Author
	current.Description = b.Description
	current.PublishedYear = b.PublishedYear
	current.ISBN = b.ISBN
	current.Genre = b.Genre
	current.UpdatedAt = r.s.tick()

	r.s.books[b.ID] = cloneBook(current)
	*b = cloneBook(current)
	return nil
}

func (r *BookRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.books[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.books, id)
	return nil
}

type ReviewRepo struct{ s *Store }

// resolve fills display fields from the current books and users. Callers hold the lock.
func (r *ReviewRepo) resolve(rv review.Review) review.Review {
	if b, ok := r.s.books[rv.Book.ID]; ok {
		rv.Book.Title = b.Title
		rv.Book.Author = b.Author
	}
	if u, ok := r.s.users[rv.User.ID]; ok {
		rv.User.Username = u.Username
	}
	return rv
}

func (r *ReviewRepo) Query(f review.Filter) pagination.Source[review.Review] {
	return source[review.Review]{load: func() []review.Review {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()

		out := make([]review.Review, 0)
		for _, rv := range r.s.reviews {
			if f.BookID != "" && rv.Book.ID != f.BookID {
				continue
			}
			out = append(out, r.resolve(rv))
		}
		slices.SortFunc(out, func(a, b review.Review) int {
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return strings.Compare(b.ID, a.ID)
		})
		return out
	}}
}

func (r *ReviewRepo) GetByID(_ context.Context, id string) (review.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rv, ok := r.s.reviews[id]
	if !ok {
		return review.Review{}, store.ErrNotFound
	}
	return r.resolve(rv), nil
}

func (r *ReviewRepo) Exists(_ context.Context, userID, bookID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rv := range r.s.reviews {
		if rv.User.ID == userID && rv.Book.ID == bookID {
			return true, nil
		}
	}
	return false, nil
}

func (r *ReviewRepo) Create(_ context.Context, rv *review.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.tick()
	rv.ID = uuid.NewString()
	rv.CreatedAt = now
	rv.UpdatedAt = now
	r.s.reviews[rv.ID] = review.Review{
		ID:        rv.ID,
		Book:      review.BookRef{ID: rv.Book.ID},
		User:      review.UserRef{ID: rv.User.ID},
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (r *ReviewRepo) UpdateOwned(_ context.Context, id, userID string, p review.Patch) (review.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rv, ok := r.s.reviews[id]
	if !ok || rv.User.ID != userID {
		return review.Review{}, store.ErrNotFound
	}
	if p.Rating != nil {
		rv.Rating = *p.Rating
	}
	if p.Comment != nil {
		rv.Comment = *p.Comment
	}
	rv.UpdatedAt = r.s.tick()
	r.s.reviews[id] = rv
	return review.Review{ID: rv.ID, Book: review.BookRef{ID: rv.Book.ID}}, nil
}

func (r *ReviewRepo) DeleteOwned(_ context.Context, id, userID string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rv, ok := r.s.reviews[id]
	if !ok || rv.User.ID != userID {
		return "", store.ErrNotFound
	}
	delete(r.s.reviews, id)
	return rv.Book.ID, nil
}

func (r *ReviewRepo) DeleteByBook(_ context.Context, bookID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, rv := range r.s.reviews {
		if rv.Book.ID == bookID {
			delete(r.s.reviews, id)
		}
	}
	return nil
}

type RatingStore struct{ s *Store }

func (r *RatingStore) BookRatings(_ context.Context, bookID string) ([]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ratings []int
	for _, rv := range r.s.reviews {
		if rv.Book.ID == bookID {
			ratings = append(ratings, rv.Rating)
		}
	}
	return ratings, nil
}

// SetBookRating is a no-op for a book that no longer exists.
func (r *RatingStore) SetBookRating(_ context.Context, bookID string, sum rating.Summary) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.books[bookID]
	if !ok {
		return nil
	}
	b.AverageRating = sum.AverageRating
	b.TotalReviews = sum.TotalReviews
	r.s.books[bookID] = b
	return nil
}

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return &store.DuplicateKeyError{Field: "email"}
		}
		if existing.Username == u.Username {
			return &store.DuplicateKeyError{Field: "username"}
		}
	}

	now := r.s.tick()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, store.ErrNotFound
}

func (r *UserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, store.ErrNotFound
	}
	return u, nil
}

type RevocationStore struct{ s *Store }

func (r *RevocationStore) Revoke(_ context.Context, jti, _ string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.revoked[jti]; !ok {
		r.s.revoked[jti] = expiresAt
	}
	return nil
}

func (r *RevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	exp, ok := r.s.revoked[jti]
	return ok && exp.After(time.Now()), nil
}

func (r *RevocationStore) PurgeExpired(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	now := time.Now()
	for jti, exp := range r.s.revoked {
		if !exp.After(now) {
			delete(r.s.revoked, jti)
			n++
		}
	}
	return n, nil
}
