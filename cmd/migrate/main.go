package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"bookreview/internal/store"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	dirFlag := &cli.StringFlag{
		Name:    "dir",
		Usage:   "migrations directory",
		EnvVars: []string{"MIGRATIONS_DIR"},
	}
	dsnFlag := &cli.StringFlag{
		Name:    "dsn",
		Usage:   "database connection URL",
		EnvVars: []string{"DB_DSN"},
	}

	return &cli.App{
		Name:  "migrate",
		Usage: "apply and inspect database migrations",
		Flags: []cli.Flag{dirFlag, dsnFlag},
		Before: func(*cli.Context) error {
			loadEnvFiles()
			return goose.SetDialect("postgres")
		},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: withDB(func(c *cli.Context, db *sql.DB) error {
					if err := goose.UpContext(c.Context, db, dir(c)); err != nil {
						return fmt.Errorf("apply migrations: %w", err)
					}
					slog.Info("migrations applied")
					return nil
				}),
			},
			{
				Name:  "down",
				Usage: "roll back the latest migration",
				Action: withDB(func(c *cli.Context, db *sql.DB) error {
					if err := goose.DownContext(c.Context, db, dir(c)); err != nil {
						return fmt.Errorf("roll back migration: %w", err)
					}
					slog.Info("migration rolled back")
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "print applied and pending migrations",
				Action: withDB(func(c *cli.Context, db *sql.DB) error {
					return goose.StatusContext(c.Context, db, dir(c))
				}),
			},
			{
				Name:      "create",
				Usage:     "create a new SQL migration",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return errors.New("name is required for 'create'")
					}
					if err := goose.Create(nil, dir(c), name, "sql"); err != nil {
						return fmt.Errorf("create migration: %w", err)
					}
					slog.Info("migration created", "name", name)
					return nil
				},
			},
		},
	}
}

func dir(c *cli.Context) string {
	if v := c.String("dir"); v != "" {
		return v
	}
	return migrationsDir()
}

// withDB opens the pool for the duration of one command.
func withDB(fn func(*cli.Context, *sql.DB) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		dsn := c.String("dsn")
		if dsn == "" {
			dsn = databaseDSN()
		}

		pool, err := store.OpenPool(c.Context, store.PoolConfig{DSN: dsn, MaxConns: 2})
		if err != nil {
			return err
		}
		defer pool.Close()

		db := stdlib.OpenDBFromPool(pool)
		defer db.Close()
		return fn(c, db)
	}
}
