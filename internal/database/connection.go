package database

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/sirupsen/logrus"
	"github.com/tourdesk/backoffice-api/internal/config"
)

// maskPassword masks the password in a database URL for safe logging
func maskPassword(url string) string {
	re := regexp.MustCompile(`(postgres(?:ql)?://[^:]+:)([^@]+)(@.+)`)
	return re.ReplaceAllString(url, "${1}****${3}")
}

func withParam(url, key, value string) string {
	if strings.Contains(url, key) {
		return url
	}
	separator := "?"
	if strings.Contains(url, "?") {
		separator = "&"
	}
	return url + separator + key + "=" + value
}

// NewConnection opens the sqlx pool with the configured driver.
// "pgx" goes through pgx's stdlib adapter, "postgres" through lib/pq.
func NewConnection(cfg config.DatabaseConfig, logger *logrus.Logger) (*sqlx.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	// Supabase requires TLS
	connectionURL := withParam(cfg.URL, "sslmode", "require")
	usingPooler := strings.Contains(connectionURL, ":6543")

	logger.WithFields(logrus.Fields{
		"url":    maskPassword(connectionURL),
		"driver": cfg.Driver,
		"pooler": usingPooler,
	}).Info("Connecting to database")

	var (
		db  *sqlx.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = sqlx.Connect("postgres", connectionURL)
	default:
		pgxConfig, perr := pgx.ParseConfig(connectionURL)
		if perr != nil {
			return nil, fmt.Errorf("failed to parse database URL: %w", perr)
		}
		// Transaction mode pooling (port 6543) does not support prepared statements
		if usingPooler {
			pgxConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
		}
		db, err = sqlx.Connect("pgx", stdlib.RegisterConnConfig(pgxConfig))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxLifetime / 2)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
