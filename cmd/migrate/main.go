package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"bookreview/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dir string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply and inspect database migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dir, "dir", migrationsDir(), "migrations directory")

	root.AddCommand(
		dbCommand("up", "Apply all pending migrations", &dir, func(ctx context.Context, db *sql.DB, dir string) error {
			return goose.UpContext(ctx, db, dir)
		}),
		dbCommand("down", "Roll back the latest migration", &dir, func(ctx context.Context, db *sql.DB, dir string) error {
			return goose.DownContext(ctx, db, dir)
		}),
		dbCommand("redo", "Roll back and re-apply the latest migration", &dir, func(ctx context.Context, db *sql.DB, dir string) error {
			return goose.RedoContext(ctx, db, dir)
		}),
		dbCommand("status", "Print the migration status", &dir, func(ctx context.Context, db *sql.DB, dir string) error {
			return goose.StatusContext(ctx, db, dir)
		}),
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a new SQL migration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := goose.Create(nil, dir, args[0], "sql"); err != nil {
					return fmt.Errorf("create migration: %w", err)
				}
				return nil
			},
		},
	)
	return root
}

type dbAction func(ctx context.Context, db *sql.DB, dir string) error

func dbCommand(use, short string, dir *string, action dbAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, closeDB, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := goose.SetDialect("postgres"); err != nil {
				return err
			}
			if err := action(ctx, db, *dir); err != nil {
				return fmt.Errorf("%s: %w", use, err)
			}
			return nil
		},
	}
}

func openDB(ctx context.Context) (*sql.DB, func(), error) {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return nil, nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database (%s): %w", redactDSN(cfg.DSN), err)
	}

	db := stdlib.OpenDBFromPool(pool)
	return db, func() {
		_ = db.Close()
		pool.Close()
	}, nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
