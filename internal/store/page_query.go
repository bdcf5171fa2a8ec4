package store

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const dialectPostgres = "postgres"

// Querier is the read side of a pgx pool or connection.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Dialect returns the goqu builder used by every repository.
func Dialect() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

// PageQuery is a filtered dataset that can be counted and read in windows.
// Base holds FROM, JOIN and WHERE only; columns and ordering are applied per read.
type PageQuery[T any] struct {
	DB      Querier
	Base    *goqu.SelectDataset
	Columns []any
	Order   []exp.OrderedExpression
	Scan    pgx.RowToFunc[T]
	Timeout time.Duration
}

func (q PageQuery[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, q.Timeout)
}

func (q PageQuery[T]) Count(ctx context.Context) (int, error) {
	sql, args, err := q.Base.Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return 0, err
	}

	timeoutCtx, cancel := q.withTimeout(ctx)
	defer cancel()

	var total int
	if err := q.DB.QueryRow(timeoutCtx, sql, args...).Scan(&total); err != nil {
		return 0, MapError(err)
	}
	return total, nil
}

func (q PageQuery[T]) Fetch(ctx context.Context, offset, limit int) ([]T, error) {
	if offset < 0 || limit < 1 {
		return []T{}, nil
	}
	sql, args, err := q.Base.
		Select(q.Columns...).
		Order(q.Order...).
		Offset(uint(offset)).
		Limit(uint(limit)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := q.withTimeout(ctx)
	defer cancel()

	rows, err := q.DB.Query(timeoutCtx, sql, args...)
	if err != nil {
		return nil, MapError(err)
	}
	items, err := pgx.CollectRows(rows, q.Scan)
	if err != nil {
		return nil, MapError(err)
	}
	return items, nil
}

// DB is a Querier that can also execute writes. *pgxpool.Pool satisfies it.
type DB interface {
	Querier
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}
