package persist

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// RunMigrations applies all pending migrations for the database's dialect.
func RunMigrations(ctx context.Context, db *DB) error {
	dialect := "postgres"
	if db.Dialect == DialectSQLite {
		dialect = "sqlite3"
	}
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db.SQL, "migrations/"+string(db.Dialect)); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
