package database

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Config holds database connection settings.
type Config struct {
	DatabasePath string
}

// DB wraps the sqlite connection and owns schema migration.
type DB struct {
	conn *sql.DB
}

// NewDB opens (creating if needed) the sqlite database at the configured
// path and runs pending migrations.
func NewDB(cfg Config) (*DB, error) {
	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	// _busy_timeout keeps concurrent writers from failing immediately;
	// foreign keys are on for future schema additions.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", cfg.DatabasePath)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.Up(conn, "migrations"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Connection exposes the underlying connection for repositories.
func (d *DB) Connection() *sql.DB { return d.conn }

func (d *DB) Close() error { return d.conn.Close() }
