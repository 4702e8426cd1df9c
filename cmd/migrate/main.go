package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"favtunes/internal/logging"
)

func main() {
	migrationsDir := flag.String("path", "migrations", "directory holding the SQL migrations")
	flag.Parse()

	logging.SetGlobal(logging.New(logging.Config{Level: "info", Format: "text"}))

	if flag.NArg() != 1 {
		log.Fatal().Msg("usage: migrate [-path dir] up|down|version")
	}
	command := flag.Arg(0)

	_ = godotenv.Load(".env", "config/local.env")

	dsn, err := databaseURL()
	if err != nil {
		log.Fatal().Err(err).Msg("database configuration")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("create postgres driver")
	}

	absPath, err := filepath.Abs(*migrationsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("resolve migrations path")
	}
	sourceURL := fmt.Sprintf("file://%s", filepath.ToSlash(absPath))

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		log.Fatal().Err(err).Msg("create migrate instance")
	}

	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("apply migrations")
		}
		log.Info().Msg("migrations applied")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("roll back migrations")
		}
		log.Info().Msg("migrations rolled back")
	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatal().Err(err).Msg("read migration version")
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("schema version")
	default:
		log.Fatal().Str("command", command).Msg("unknown command, want up|down|version")
	}
}

// databaseURL prefers DATABASE_URL and otherwise builds a DSN from the DB_*
// variables.
func databaseURL() (string, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn, nil
	}

	user, name := os.Getenv("DB_USER"), os.Getenv("DB_NAME")
	if user == "" || name == "" {
		return "", errors.New("DATABASE_URL or DB_USER and DB_NAME are required")
	}
	host := envOrDefault("DB_HOST", "localhost")
	port := envOrDefault("DB_PORT", "5432")
	sslMode := envOrDefault("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, os.Getenv("DB_PASSWORD"), name, sslMode), nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
