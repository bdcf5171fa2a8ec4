// Package app assembles repositories and services for the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/config"
	"bookreview/internal/rating"
	"bookreview/internal/review"
	"bookreview/internal/store"
	"bookreview/internal/store/memstore"
	"bookreview/internal/user"
)

// Repositories is one storage backend behind every repository contract.
type Repositories struct {
	Books       book.Repository
	Reviews     review.Repository
	Ratings     rating.Store
	Users       user.Repository
	Revocations auth.Revocations
	Ping        func(ctx context.Context) error
	Close       func()
}

// OpenRepositories connects the backend selected by cfg.StoreDriver.
func OpenRepositories(ctx context.Context, cfg config.Config) (Repositories, error) {
	if cfg.StoreDriver == config.DriverMemory {
		return MemoryRepositories(memstore.New()), nil
	}

	pool, err := store.OpenPool(ctx, store.PoolConfig{
		DSN:         cfg.DSN,
		MaxConns:    cfg.DBMaxConns,
		PingTimeout: 2 * time.Second,
	})
	if err != nil {
		return Repositories{}, fmt.Errorf("open store: %w", err)
	}
	slog.InfoContext(ctx, "database connection OK", "dsn", store.RedactDSN(cfg.DSN))

	return Repositories{
		Books:       book.NewPostgresRepo(pool, cfg.DBTimeout),
		Reviews:     review.NewPostgresRepo(pool, cfg.DBTimeout),
		Ratings:     rating.NewPostgresStore(pool, cfg.DBTimeout),
		Users:       user.NewPostgresRepo(pool, cfg.DBTimeout),
		Revocations: auth.NewPostgresRevocations(pool, cfg.DBTimeout),
		Ping:        pool.Ping,
		Close:       pool.Close,
	}, nil
}

func MemoryRepositories(st *memstore.Store) Repositories {
	return Repositories{
		Books:       st.Books(),
		Reviews:     st.Reviews(),
		Ratings:     st.Ratings(),
		Users:       st.Users(),
		Revocations: st.Revocations(),
		Ping:        st.Ping,
		Close:       func() {},
	}
}

type Services struct {
	Books   *book.Service
	Reviews *review.Service
	Users   *user.Service
	Auth    *auth.Service
}

func NewServices(repos Repositories, cfg config.Config, logger *slog.Logger) Services {
	aggregator := rating.NewAggregator(repos.Ratings, rating.WithLogger(logger))
	reviews := review.NewService(repos.Reviews, repos.Books, aggregator)
	users := user.NewService(repos.Users)
	return Services{
		Books:   book.NewService(repos.Books, reviews),
		Reviews: reviews,
		Users:   users,
		Auth:    auth.NewService(cfg.JWTSecret, cfg.JWTTTL, users, repos.Revocations),
	}
}
