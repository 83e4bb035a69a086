package main

import (
	"flag"
	"log/slog"
	"os"

	"surveyhub/cmd/migration/initialize"
	"surveyhub/cmd/migration/seed"
	"surveyhub/config"
	"surveyhub/internal/database"
	"surveyhub/internal/logger"

	migrate "github.com/rubenv/sql-migrate"
)

func main() {
	runSeed := flag.Bool("seed", false, "load development fixtures after migrating")
	migrationsDir := flag.String("dir", "migrations", "directory holding SQL migrations")
	flag.Parse()

	logger.InitDefault(slog.LevelInfo)
	log := logger.New("migration")

	cfg, err := config.InitConfig()
	if err != nil {
		log.Er("failed to initialize config", err)
		os.Exit(1)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Er("failed to connect to database", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := initialize.InitializeTables(db.SQL, cfg, log); err != nil {
		log.Er("failed to initialize tables", err)
		os.Exit(1)
	}

	sqlDB, err := db.SQL.DB()
	if err != nil {
		log.Er("failed to get sql connection", err)
		os.Exit(1)
	}

	dialect := "sqlite3"
	if cfg.DatabaseDriver == "postgres" {
		dialect = "postgres"
	}

	applied, err := migrate.Exec(sqlDB, dialect, &migrate.FileMigrationSource{Dir: *migrationsDir}, migrate.Up)
	if err != nil {
		log.Er("failed to apply migrations", err)
		os.Exit(1)
	}
	log.Info("Applied migrations", "count", applied)

	// A schema change can invalidate any cached row shape.
	if applied > 0 {
		if err := db.FlushAllCaches(); err != nil {
			log.Er("failed to flush caches after migration", err)
			os.Exit(1)
		}
	}

	if *runSeed {
		if err := seed.Seed(db.SQL, cfg, log); err != nil {
			log.Er("failed to seed data", err)
			os.Exit(1)
		}
	}
}
