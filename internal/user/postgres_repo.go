package user

import (
	"context"
	"time"

	"bookreview/internal/store"

	"github.com/doug-martin/goqu/v9"
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

var userColumns = []any{"id", "username", "email", "password_hash", "role", "created_at", "updated_at"}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *PostgresRepo) Create(ctx context.Context, u *User) error {
	sql, args, err := store.Dialect().
		Insert("users").
		Rows(goqu.Record{
			"username":      u.Username,
			"email":         u.Email,
			"password_hash": u.PasswordHash,
			"role":          u.Role,
		}).
		Returning(userColumns...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	created, err := scanUser(r.db.QueryRow(timeoutCtx, sql, args...))
	if err != nil {
		return store.MapError(err)
	}
	*u = created
	return nil
}

func (r *PostgresRepo) getBy(ctx context.Context, column, value string) (User, error) {
	sql, args, err := store.Dialect().
		From("users").
		Select(userColumns...).
		Where(goqu.C(column).Eq(value)).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		return User{}, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	u, err := scanUser(r.db.QueryRow(timeoutCtx, sql, args...))
	if err != nil {
		return User{}, store.MapError(err)
	}
	return u, nil
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.getBy(ctx, "id", id)
}
