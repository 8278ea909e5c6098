package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	dbURL := flag.String("db-url", "", "database URL (overrides env)")
	migrationsPath := flag.String("path", "migrations", "path to migrations directory")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	m, err := migrate.New("file://"+*migrationsPath, databaseURL(*dbURL))
	if err != nil {
		logger.Error("failed to create migrator", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	switch *direction {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	default:
		logger.Error("invalid direction (use 'up' or 'down')", "direction", *direction)
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("migration failed", "direction", *direction, "error", err)
		os.Exit(1)
	}

	v, dirty, _ := m.Version()
	fmt.Printf("asset migration %s complete (version: %d, dirty: %v)\n", *direction, v, dirty)
}

// databaseURL resolves the DSN from the flag, DATABASE_URL, or DB_* parts.
func databaseURL(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	host := envOrDefault("DB_HOST", "localhost")
	port := envOrDefault("DB_PORT", "5432")
	user := envOrDefault("DB_USER", "media")
	pass := envOrDefault("DB_PASSWORD", "media-dev")
	name := envOrDefault("DB_NAME", "media")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, port, name)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
