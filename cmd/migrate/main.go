package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/srkarthi1982/fitness-tracker/internal/config"
)

// Applies every db/postgres/migrations/*.up.sql file in lexical order.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.PostgresURL == "" {
		log.Fatal("POSTGRES_URL is required to run migrations")
	}

	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "db/postgres/migrations"
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("no migrations found in %s", dir)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	for _, file := range files {
		contents, err := os.ReadFile(file)
		if err != nil {
			log.Fatalf("read %s: %v", file, err)
		}
		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			log.Fatalf("apply %s: %v", file, err)
		}
		log.Printf("applied %s", filepath.Base(file))
	}

	log.Printf("migrations complete (%d files)", len(files))
}
