package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmashiku07/starlink-tracker/internal/logging"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// Config holds database configuration
type Config struct {
	Path         string
	MaxOpenConns int
	BusyTimeout  int // milliseconds
}

// Open opens and pings the SQLite database at cfg.Path
func Open(cfg Config) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if cfg.MaxOpenConns < 1 {
		cfg.MaxOpenConns = 10
	}
	if cfg.BusyTimeout < 1 {
		cfg.BusyTimeout = 5000
	}

	memory := cfg.Path == MemoryPath
	if !memory {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dsn(cfg, memory))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every connection of an in-memory database is a separate database
	if memory {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns / 2)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Msg("Database initialized")
	return db, nil
}

// Migrate applies the embedded schema migrations and reports how many ran
func Migrate(db *sql.DB) (int, error) {
	return NewMigrationManager(db, Migrations).Run()
}

// dsn builds a modernc DSN so that the pragmas apply to every pooled connection
func dsn(cfg Config, memory bool) string {
	pragmas := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", cfg.BusyTimeout),
		"_pragma=foreign_keys(1)",
	}
	if !memory {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
	}
	return cfg.Path + "?" + strings.Join(pragmas, "&")
}

// Transaction executes a function within a database transaction
func Transaction(db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
