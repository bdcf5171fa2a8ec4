package rating

import (
	"context"
	"time"

	"bookreview/internal/store"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
)

// PostgresStore reads ratings from reviews and writes the aggregate onto books.
type PostgresStore struct {
	db      store.DB
	timeout time.Duration
}

func NewPostgresStore(db store.DB, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *PostgresStore) BookRatings(ctx context.Context, bookID string) ([]int, error) {
	sql, args, err := store.Dialect().
		From("reviews").
		Select("rating").
		Where(goqu.C("book_id").Eq(bookID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.db.Query(timeoutCtx, sql, args...)
	if err != nil {
		return nil, store.MapError(err)
	}
	ratings, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, store.MapError(err)
	}
	return ratings, nil
}

// SetBookRating is a no-op when the book no longer exists.
func (s *PostgresStore) SetBookRating(ctx context.Context, bookID string, sum Summary) error {
	sql, args, err := store.Dialect().
		Update("books").
		Set(goqu.Record{
			"average_rating": sum.AverageRating,
			"total_reviews":  sum.TotalReviews,
		}).
		Where(goqu.C("id").Eq(bookID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err = s.db.Exec(timeoutCtx, sql, args...)
	return store.MapError(err)
}
