package book

import (
	"context"
	"errors"
	"time"

	"bookreview/internal/pagination"
	"bookreview/internal/store"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
)

type PostgresRepo struct {
	db      store.DB
	timeout time.Duration
}

func NewPostgresRepo(db store.DB, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

var bookColumns = []any{
	"id", "title", "author", "description", "published_year", "isbn", "genre",
	"average_rating", "total_reviews", goqu.L("created_by::text"), "created_at", "updated_at",
}

func scanBook(row pgx.Row) (Book, error) {
	var (
		b         Book
		createdBy *string
	)
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Description, &b.PublishedYear, &b.ISBN, &b.Genre,
		&b.AverageRating, &b.TotalReviews, &createdBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if createdBy != nil {
		b.CreatedBy = *createdBy
	}
	if b.Genre == nil {
		b.Genre = []string{}
	}
	return b, err
}

func (r *PostgresRepo) Query(f Filter) pagination.Source[Book] {
	base := store.Dialect().From("books")

	if f.Author != "" {
		base = base.Where(goqu.C("author").ILike(store.LikePattern(f.Author)))
	}
	if len(f.Genres) > 0 {
		anyOf := make([]exp.Expression, 0, len(f.Genres))
		for _, g := range f.Genres {
			anyOf = append(anyOf, goqu.L("? = ANY(genre)", g))
		}
		base = base.Where(goqu.Or(anyOf...))
	}
	if f.Search != "" {
		pattern := store.LikePattern(f.Search)
		base = base.Where(goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("author").ILike(pattern),
		))
	}

	return store.PageQuery[Book]{
		DB:      r.db,
		Base:    base,
		Columns: bookColumns,
		Order:   []exp.OrderedExpression{goqu.C("created_at").Asc(), goqu.C("id").Asc()},
		Scan: func(row pgx.CollectableRow) (Book, error) {
			return scanBook(row)
		},
		Timeout: r.timeout,
	}
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Book, error) {
	sql, args, err := store.Dialect().
		From("books").
		Select(bookColumns...).
		Where(goqu.C("id").Eq(id)).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		return Book{}, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, sql, args...))
	if err != nil {
		return Book{}, store.MapError(err)
	}
	return b, nil
}

// Exists reports false for malformed identifiers.
func (r *PostgresRepo) Exists(ctx context.Context, id string) (bool, error) {
	sql, args, err := store.Dialect().
		From("books").
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return false, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var n int
	if err := r.db.QueryRow(timeoutCtx, sql, args...).Scan(&n); err != nil {
		if err = store.MapError(err); errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return n > 0, nil
}

func bookRecord(b *Book) goqu.Record {
	return goqu.Record{
		"title":          b.Title,
		"author":         b.Author,
		"description":    b.Description,
		"published_year": nullable(b.PublishedYear),
		"isbn":           nullable(b.ISBN),
		"genre":          store.TextArray(b.Genre),
	}
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	rec := bookRecord(b)
	if b.CreatedBy != "" {
		rec["created_by"] = b.CreatedBy
	}

	sql, args, err := store.Dialect().
		Insert("books").
		Rows(rec).
		Returning(bookColumns...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	created, err := scanBook(r.db.QueryRow(timeoutCtx, sql, args...))
	if err != nil {
		return store.MapError(err)
	}
	*b = created
	return nil
}

// Update writes the client-authored fields of b; the rating aggregate is left alone.
func (r *PostgresRepo) Update(ctx context.Context, b *Book) error {
	rec := bookRecord(b)
	rec["updated_at"] = goqu.L("now()")

	sql, args, err := store.Dialect().
		Update("books").
		Set(rec).
		Where(goqu.C("id").Eq(b.ID)).
		Returning(bookColumns...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	updated, err := scanBook(r.db.QueryRow(timeoutCtx, sql, args...))
	if err != nil {
		return store.MapError(err)
	}
	*b = updated
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	sql, args, err := store.Dialect().
		Delete("books").
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, sql, args...)
	if err != nil {
		return store.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
