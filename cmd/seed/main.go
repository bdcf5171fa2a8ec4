package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"bookreview/internal/app"
	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/config"
	"bookreview/internal/pagination"
	"bookreview/internal/platform/logging"
	"bookreview/internal/review"
	"bookreview/internal/store"
	"bookreview/internal/user"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "seed",
		Usage: "load demo users, books and reviews",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "password",
				Usage: "password given to every demo account",
				Value: "Sup3r$ecret",
			},
			&cli.Uint64Flag{
				Name:  "rand-seed",
				Usage: "seed for picking review ratings",
				Value: 1,
			},
		},
		Action: func(c *cli.Context) error {
			config.LoadEnvFiles()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.Setup(os.Stderr, cfg.LogLevel, cfg.Development())

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			repos, err := app.OpenRepositories(ctx, cfg)
			if err != nil {
				return err
			}
			defer repos.Close()

			s := seeder{
				svc:      app.NewServices(repos, cfg, logger),
				password: c.String("password"),
				rnd:      rand.New(rand.NewPCG(c.Uint64("rand-seed"), 0)),
				log:      logger,
			}
			return s.run(ctx)
		},
	}
}

type seeder struct {
	svc      app.Services
	password string
	rnd      *rand.Rand
	log      *slog.Logger
}

type stats struct {
	users, books, reviews int
}

func (s seeder) run(ctx context.Context) error {
	var st stats

	readers := make([]user.User, 0, len(demoUsers))
	for _, name := range demoUsers {
		u, created, err := s.account(ctx, name)
		if err != nil {
			return fmt.Errorf("account %s: %w", name, err)
		}
		if created {
			st.users++
		}
		readers = append(readers, u)
	}

	creator := readers[0].ID
	for _, in := range demoBooks {
		b, created, err := s.book(ctx, in, creator)
		if err != nil {
			return fmt.Errorf("book %q: %w", in.Title, err)
		}
		if created {
			st.books++
		}

		for _, reader := range readers {
			if s.rnd.IntN(4) == 0 {
				continue
			}
			_, err := s.svc.Reviews.Create(ctx, b.ID, reader.ID, review.Input{
				Rating:  1 + s.rnd.IntN(5),
				Comment: comments[s.rnd.IntN(len(comments))],
			})
			switch {
			case errors.Is(err, review.ErrAlreadyReviewed):
			case err != nil:
				return fmt.Errorf("review %q by %s: %w", b.Title, reader.Username, err)
			default:
				st.reviews++
			}
		}
	}

	s.log.InfoContext(ctx, "seed complete", "users", st.users, "books", st.books, "reviews", st.reviews)
	return nil
}

// account signs name up, or logs in when the address is already registered.
func (s seeder) account(ctx context.Context, name string) (user.User, bool, error) {
	email := name + "@example.com"
	sess, err := s.svc.Auth.Signup(ctx, auth.SignupInput{Username: name, Email: email, Password: s.password})
	if err == nil {
		return sess.User, true, nil
	}
	if !errors.Is(err, store.ErrDuplicateKey) {
		return user.User{}, false, err
	}
	sess, err = s.svc.Auth.Login(ctx, auth.LoginInput{Email: email, Password: s.password})
	return sess.User, false, err
}

// book creates in, or finds the existing book carrying the same ISBN.
func (s seeder) book(ctx context.Context, in book.Input, actorID string) (book.Book, bool, error) {
	b, err := s.svc.Books.Create(ctx, in, actorID)
	if err == nil {
		return b, true, nil
	}
	if !errors.Is(err, store.ErrDuplicateKey) || in.ISBN == nil {
		return book.Book{}, false, err
	}

	page, err := s.svc.Books.Search(ctx, in.Title, pagination.Params{Page: 1, Limit: pagination.MaxLimit})
	if err != nil {
		return book.Book{}, false, err
	}
	for _, existing := range page.Data {
		if existing.ISBN != nil && *existing.ISBN == *in.ISBN {
			return existing, false, nil
		}
	}
	return book.Book{}, false, fmt.Errorf("isbn %s taken by a book titled differently", *in.ISBN)
}
