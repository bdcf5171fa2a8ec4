package review

import (
	"context"
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

var reviewColumns = []any{
	goqu.I("r.id"),
	goqu.I("r.book_id"),
	goqu.COALESCE(goqu.I("b.title"), "").As("book_title"),
	goqu.COALESCE(goqu.I("b.author"), "").As("book_author"),
	goqu.I("r.user_id"),
	goqu.COALESCE(goqu.I("u.username"), "").As("username"),
	goqu.I("r.rating"),
	goqu.I("r.comment"),
	goqu.I("r.created_at"),
	goqu.I("r.updated_at"),
}

// populated joins the display fields of the book and the author.
func populated() *goqu.SelectDataset {
	return store.Dialect().
		From(goqu.T("reviews").As("r")).
		LeftJoin(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("r.book_id")))).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("r.user_id"))))
}

func scanReview(row pgx.Row) (Review, error) {
	var rv Review
	err := row.Scan(
		&rv.ID, &rv.Book.ID, &rv.Book.Title, &rv.Book.Author,
		&rv.User.ID, &rv.User.Username,
		&rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt,
	)
	return rv, err
}

func (r *PostgresRepo) Query(f Filter) pagination.Source[Review] {
	base := populated()
	if f.BookID != "" {
		base = base.Where(goqu.I("r.book_id").Eq(f.BookID))
	}
	return store.PageQuery[Review]{
		DB:      r.db,
		Base:    base,
		Columns: reviewColumns,
		Order:   []exp.OrderedExpression{goqu.I("r.created_at").Desc(), goqu.I("r.id").Desc()},
		Scan: func(row pgx.CollectableRow) (Review, error) {
			return scanReview(row)
		},
		Timeout: r.timeout,
	}
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Review, error) {
	sql, args, err := populated().
		Select(reviewColumns...).
		Where(goqu.I("r.id").Eq(id)).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		return Review{}, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rv, err := scanReview(r.db.QueryRow(timeoutCtx, sql, args...))
	if err != nil {
		return Review{}, store.MapError(err)
	}
	return rv, nil
}

func (r *PostgresRepo) Exists(ctx context.Context, userID, bookID string) (bool, error) {
	sql, args, err := store.Dialect().
		From("reviews").
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C("user_id").Eq(userID), goqu.C("book_id").Eq(bookID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return false, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var n int
	if err := r.db.QueryRow(timeoutCtx, sql, args...).Scan(&n); err != nil {
		return false, store.MapError(err)
	}
	return n > 0, nil
}

func (r *PostgresRepo) Create(ctx context.Context, rv *Review) error {
	sql, args, err := store.Dialect().
		Insert("reviews").
		Rows(goqu.Record{
			"book_id": rv.Book.ID,
			"user_id": rv.User.ID,
			"rating":  rv.Rating,
			"comment": rv.Comment,
		}).
		Returning("id", "created_at", "updated_at").
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err = r.db.QueryRow(timeoutCtx, sql, args...).Scan(&rv.ID, &rv.CreatedAt, &rv.UpdatedAt)
	return store.MapError(err)
}

func (r *PostgresRepo) UpdateOwned(ctx context.Context, id, userID string, p Patch) (Review, error) {
	set := goqu.Record{"updated_at": goqu.L("now()")}
	if p.Rating != nil {
		set["rating"] = *p.Rating
	}
	if p.Comment != nil {
		set["comment"] = *p.Comment
	}

	sql, args, err := store.Dialect().
		Update("reviews").
		Set(set).
		Where(goqu.C("id").Eq(id), goqu.C("user_id").Eq(userID)).
		Returning("id", "book_id").
		Prepared(true).
		ToSQL()
	if err != nil {
		return Review{}, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var rv Review
	if err := r.db.QueryRow(timeoutCtx, sql, args...).Scan(&rv.ID, &rv.Book.ID); err != nil {
		return Review{}, store.MapError(err)
	}
	return rv, nil
}

func (r *PostgresRepo) DeleteOwned(ctx context.Context, id, userID string) (string, error) {
	sql, args, err := store.Dialect().
		Delete("reviews").
		Where(goqu.C("id").Eq(id), goqu.C("user_id").Eq(userID)).
		Returning("book_id").
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var bookID string
	if err := r.db.QueryRow(timeoutCtx, sql, args...).Scan(&bookID); err != nil {
		return "", store.MapError(err)
	}
	return bookID, nil
}

func (r *PostgresRepo) DeleteByBook(ctx context.Context, bookID string) error {
	sql, args, err := store.Dialect().
		Delete("reviews").
		Where(goqu.C("book_id").Eq(bookID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err = r.db.Exec(timeoutCtx, sql, args...)
	return store.MapError(err)
}
