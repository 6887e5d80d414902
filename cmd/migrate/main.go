package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-bookings/internal/config"
	"ms-bookings/internal/database/migrations"
)

func main() {
	_ = godotenv.Load()

	direction := flag.String("direction", "up", "migration direction: up or down")
	dir := flag.String("dir", "./migrations", "directory containing migration files")
	flag.Parse()

	cfg := config.Load()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Database.Username, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)

	connector := pgdriver.NewConnector(pgdriver.WithDSN(dsn))
	sqldb := sql.OpenDB(connector)
	defer sqldb.Close()

	if err := sqldb.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{MigrationsDir: *dir})
	defer runner.Close()

	switch *direction {
	case "up":
		log.Println("Running migrations...")
		if err := runner.MigrateUp(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	case "down":
		log.Println("Rolling back migrations...")
		if err := runner.MigrateDown(); err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
	default:
		log.Fatalf("Unknown direction %q (expected up or down)", *direction)
	}

	log.Println("Done.")
}
