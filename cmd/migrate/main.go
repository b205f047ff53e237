package main

import (
	"errors"
	"flag"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Nirmit210/pulsepixeltech-sub001/internal/logging"
)

func main() {
	_ = godotenv.Load()
	log := logging.New("migrate")
	defer log.Sync()

	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		log.Fatal("usage: migrate <up|down|version>")
	}

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		postgresURL = os.Getenv("POSTGRES_DSN")
	}
	if postgresURL == "" {
		log.Fatal("POSTGRES_URL environment variable is required")
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "file://migrations"
	}

	m, err := migrate.New(migrationsPath, postgresURL)
	if err != nil {
		log.Fatal("create migrate instance", zap.Error(err))
	}
	defer func() { _, _ = m.Close() }()

	switch args[0] {
	case "up":
		err = m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("no pending migrations")
			return
		}
		if err != nil {
			log.Fatal("migration up", zap.Error(err))
		}
		log.Info("migrations applied")

	case "down":
		err = m.Steps(-1)
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("no migrations to rollback")
			return
		}
		if err != nil {
			log.Fatal("migration down", zap.Error(err))
		}
		log.Info("migration rolled back")

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info("no migrations applied yet")
			return
		}
		if err != nil {
			log.Fatal("read version", zap.Error(err))
		}
		log.Info("current migration version",
			zap.Uint64("version", uint64(version)),
			zap.Bool("dirty", dirty))

	default:
		log.Fatal("unknown command", zap.String("command", args[0]))
	}
}
