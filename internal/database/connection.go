package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. DB_TYPE selects the
// engine: "sqlite" (default, file path from DB_PATH) or "postgres"
// (connection string from DATABASE_URL).
func Connect() error {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	var db *sqlx.DB
	var err error

	switch dbType {
	case "sqlite":
		dbPath := os.Getenv("DB_PATH")
		if dbPath == "" {
			dbPath = filepath.Join("data", "artquiz.db")
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %v", err)
		}
		db, err = sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %v", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE: %s", dbType)
	}

	DB = db

	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// Tx runs fn inside a transaction, rolling back on error
func Tx(fn func(tx *sqlx.Tx) error) error {
	tx, err := DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// answersIDColumn returns the autoincrementing key for the answer log, the
// one table whose DDL the two engines spell differently
func answersIDColumn(driver string) string {
	if driver == "postgres" {
		return "id BIGSERIAL PRIMARY KEY"
	}
	return "id INTEGER PRIMARY KEY AUTOINCREMENT"
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id BIGINT PRIMARY KEY,
			username TEXT DEFAULT '',
			first_name TEXT DEFAULT '',
			last_name TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS user_stats (
			user_id BIGINT PRIMARY KEY,
			correct INTEGER DEFAULT 0,
			total INTEGER DEFAULT 0,
			streak INTEGER DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS daily_plans (
			day TEXT PRIMARY KEY,
			slots_json TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS user_day_progress (
			user_id BIGINT NOT NULL,
			day TEXT NOT NULL,
			cursor INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, day)
		)`,
		`CREATE TABLE IF NOT EXISTS user_cycles (
			user_id BIGINT PRIMARY KEY,
			cycle_id BIGINT NOT NULL DEFAULT 1,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP,
			catalog_size INTEGER NOT NULL,
			seen_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS user_item_stats (
			user_id BIGINT NOT NULL,
			item_id TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			wrong INTEGER NOT NULL DEFAULT 0,
			correct INTEGER NOT NULL DEFAULT 0,
			last_seen_cycle BIGINT NOT NULL DEFAULT 0,
			last_seen_at TIMESTAMP,
			last_wrong_at TIMESTAMP,
			PRIMARY KEY (user_id, item_id)
		)`,
		`CREATE TABLE IF NOT EXISTS global_item_stats (
			item_id TEXT PRIMARY KEY,
			attempts INTEGER NOT NULL DEFAULT 0,
			wrong INTEGER NOT NULL DEFAULT 0,
			correct INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS answers (
			%s,
			user_id BIGINT NOT NULL,
			item_id TEXT,
			title TEXT DEFAULT '',
			artist TEXT DEFAULT '',
			year TEXT DEFAULT '',
			museum TEXT DEFAULT '',
			image_url TEXT DEFAULT '',
			chosen TEXT DEFAULT '',
			is_correct BOOLEAN NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, answersIDColumn(DB.DriverName())),
		`CREATE TABLE IF NOT EXISTS sessions (
			user_id BIGINT PRIMARY KEY,
			item_id TEXT DEFAULT '',
			title TEXT DEFAULT '',
			artist TEXT DEFAULT '',
			year TEXT DEFAULT '',
			museum TEXT DEFAULT '',
			image_url TEXT DEFAULT '',
			note TEXT DEFAULT '',
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS daily_quota (
			user_id BIGINT NOT NULL,
			day TEXT NOT NULL,
			used INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, day)
		)`,
		`CREATE TABLE IF NOT EXISTS pending_notices (
			user_id BIGINT NOT NULL,
			day TEXT NOT NULL,
			not_before TIMESTAMP NOT NULL,
			sent_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, day)
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}

	return nil
}
