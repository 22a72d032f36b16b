// pkg/db/postgres.go
package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// Config holds database connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	// StatementTimeout is sent to PostgreSQL as statement_timeout on every
	// connection. Zero leaves the server default in place.
	StatementTimeout time.Duration
}

// DSN renders the lib/pq key/value connection string. Every value is
// single-quoted so spaces, quotes and backslashes survive.
func (c Config) DSN() string {
	pairs := []string{
		"host=" + quoteDSNValue(c.Host),
		"port=" + quoteDSNValue(strconv.Itoa(c.Port)),
		"user=" + quoteDSNValue(c.User),
		"password=" + quoteDSNValue(c.Password),
		"dbname=" + quoteDSNValue(c.DBName),
		"sslmode=" + quoteDSNValue(c.SSLMode),
	}
	if c.StatementTimeout > 0 {
		// lib/pq forwards unknown keys as run-time parameters.
		pairs = append(pairs, "statement_timeout="+quoteDSNValue(strconv.FormatInt(c.StatementTimeout.Milliseconds(), 10)))
	}
	return strings.Join(pairs, " ")
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quoteDSNValue(v string) string {
	return "'" + dsnEscaper.Replace(v) + "'"
}

// NewPostgresDB initializes and returns a new PostgreSQL database connection.
func NewPostgresDB(cfg Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	return db, nil
}
