package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"clipper/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

// Open connects to Postgres through the pgx database/sql driver and
// verifies the connection.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	dsn := PrepareDSN(cfg.DBConnectionString, cfg.Environment)
	logger.Info().Str("db_port", portFromDSN(dsn)).Msg("Connecting to database")

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	logger.Info().Msg("Database connection successful")
	return db, nil
}

// PrepareDSN disables SSL for local development and, elsewhere, forces the
// simple query protocol so the service works behind a transaction pooler
// such as pgbouncer.
func PrepareDSN(dsn, environment string) string {
	isURL := strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
	appendParam := func(param string) {
		sep := " "
		if isURL {
			sep = "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
		}
		dsn += sep + param
	}

	if environment == "development" {
		if !strings.Contains(dsn, "sslmode") {
			appendParam("sslmode=disable")
		}
		return dsn
	}
	if !strings.Contains(dsn, "prefer_simple_protocol") {
		appendParam("prefer_simple_protocol=true")
	}
	return dsn
}

// portFromDSN extracts the port from a URL-style DSN for logging.
func portFromDSN(dsn string) string {
	parts := strings.Split(dsn, ":")
	for i, part := range parts {
		if strings.Contains(part, "@") && len(parts) > i+1 {
			return strings.Split(parts[i+1], "/")[0]
		}
	}
	return "not_found"
}
