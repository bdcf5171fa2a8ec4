package auth

import (
	"context"
	"time"

	"bookreview/internal/store"

	"github.com/doug-martin/goqu/v9"
)

// PostgresRevocations keeps revoked token ids in the revoked_tokens table.
type PostgresRevocations struct {
	db      store.DB
	timeout time.Duration
}

func NewPostgresRevocations(db store.DB, timeout time.Duration) *PostgresRevocations {
	return &PostgresRevocations{db: db, timeout: timeout}
}

func (r *PostgresRevocations) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRevocations) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	sql, args, err := store.Dialect().
		Insert("revoked_tokens").
		Rows(goqu.Record{"jti": jti, "user_id": userID, "expires_at": expiresAt}).
		OnConflict(goqu.DoNothing()).
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

func (r *PostgresRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	sql, args, err := store.Dialect().
		From("revoked_tokens").
		Select(goqu.COUNT("*")).
		Where(goqu.C("jti").Eq(jti), goqu.C("expires_at").Gt(goqu.L("now()"))).
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

func (r *PostgresRevocations) PurgeExpired(ctx context.Context) (int64, error) {
	sql, args, err := store.Dialect().
		Delete("revoked_tokens").
		Where(goqu.C("expires_at").Lte(goqu.L("now()"))).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, sql, args...)
	if err != nil {
		return 0, store.MapError(err)
	}
	return tag.RowsAffected(), nil
}
