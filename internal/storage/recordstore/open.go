package recordstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"

	"github.com/avdeevs/mediavault/internal/storage/recordstore/migrations"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to the record store, runs migrations, and returns the
// repository together with the owning *sql.DB. The backend is chosen by DSN:
// anything starting with postgres:// goes to Postgres via pgx, everything
// else is treated as a SQLite file path / DSN.
//
// The SQLite driver ("sqlite", modernc.org/sqlite) must be registered by the
// importing binary.
func Open(ctx context.Context, dsn string) (Repository, *sql.DB, error) {
	driver, dialect, dir := backendFor(dsn)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := runMigrations(ctx, db, dialect, dir); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}

	if dialect == "postgres" {
		return NewPostgresRepository(db), db, nil
	}
	return NewSQLiteRepository(db), db, nil
}

func backendFor(dsn string) (driver, dialect, dir string) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx", "postgres", "postgres"
	}
	return "sqlite", "sqlite3", "sqlite"
}

func runMigrations(ctx context.Context, db *sql.DB, dialect, dir string) error {
	sub, err := fs.Sub(migrations.Migrations, dir)
	if err != nil {
		return err
	}
	goose.SetBaseFS(sub)

	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
