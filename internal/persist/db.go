package persist

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/trailgo/trail/internal/config"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DB wraps a database/sql handle. Postgres connections come from a pgx pool.
type DB struct {
	SQL     *sql.DB
	Dialect Dialect
	pool    *pgxpool.Pool
	log     *zap.Logger
}

func NewDB(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*DB, error) {
	db := &DB{Dialect: Dialect(cfg.Dialect), log: log}
	switch db.Dialect {
	case DialectSQLite:
		if dir := filepath.Dir(cfg.DSN); dir != "." && cfg.DSN != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		sqlDB, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// Single writer; sqlite serialises anyway.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		db.SQL = sqlDB
	case DialectPostgres:
		poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse dsn: %w", err)
		}
		poolCfg.MaxConns = int32(max(cfg.MaxOpenConns, 1))
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to db: %w", err)
		}
		db.pool = pool
		db.SQL = stdlib.OpenDBFromPool(pool)
	default:
		return nil, fmt.Errorf("unsupported dialect %q", cfg.Dialect)
	}

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.SQL.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s db: %w", db.Dialect, err)
	}

	log.Info("database connected", zap.String("dialect", string(db.Dialect)))
	return db, nil
}

// bind returns the placeholder for argument pos (1-based).
func (db *DB) bind(pos int) string {
	if db.Dialect == DialectPostgres {
		return fmt.Sprintf("$%d", pos)
	}
	return "?"
}

func (db *DB) Close() {
	db.SQL.Close()
	if db.pool != nil {
		db.pool.Close()
	}
}
