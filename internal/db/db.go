package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"   // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
	"yt-sub/internal/logger"
)

// DB is the global database connection.
var DB *sqlx.DB

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	settings_json TEXT NOT NULL,
	last_run_at TIMESTAMP
)`

// InitDB opens the database for the given driver ("sqlite" or "postgres")
// and creates the schema when it is missing.
func InitDB(driver, url string) error {
	conn, err := sqlx.Connect(driver, url)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if driver == "sqlite" {
		// A single writer avoids SQLITE_BUSY between concurrent account checks.
		conn.SetMaxOpenConns(1)
	}
	DB = conn

	if err := Migrate(); err != nil {
		return err
	}

	logger.L.Infow("Database connection established", "driver", driver)
	return nil
}

// Migrate creates the users table.
func Migrate() error {
	if _, err := DB.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the global connection.
func Close() error {
	if DB == nil {
		return nil
	}
	return DB.Close()
}
