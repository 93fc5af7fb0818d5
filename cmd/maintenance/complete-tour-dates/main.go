package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/tourdesk/backoffice-api/internal/config"
	"github.com/tourdesk/backoffice-api/internal/database"
)

// Runs the tour date lifecycle pass once, for deployments that keep
// CRON_ENABLED=false and schedule this binary externally instead.
func main() {
	var dbURLFlag, driver, asOf string
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.StringVar(&driver, "driver", "pgx", "database driver: pgx or postgres")
	flag.StringVar(&asOf, "as-of", "", "complete dates that ended before this day (2006-01-02), default now")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	now := time.Now()
	if asOf != "" {
		day, err := time.Parse("2006-01-02", asOf)
		if err != nil {
			log.Fatalf("invalid -as-of: %v", err)
		}
		now = day
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		Driver:             driver,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	}, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ids, err := database.NewTourDateRepository(db).CompletePast(now)
	if err != nil {
		log.Fatalf("failed to complete tour dates: %v", err)
	}

	fmt.Printf("Completed %d tour date(s) as of %s\n", len(ids), now.Format("2006-01-02"))
	for _, id := range ids {
		fmt.Printf("  %s\n", id)
	}
}
