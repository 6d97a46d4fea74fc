package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/roadrunner/booking-backend/internal/config"
	"github.com/roadrunner/booking-backend/internal/database"
	"github.com/roadrunner/booking-backend/migrations"
)

func main() {
	var dbURLFlag string
	var dryRun bool
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.BoolVar(&dryRun, "dry-run", false, "List pending migrations without applying them")
	flag.Parse()

	// Optional .env in the working directory
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		log.Fatalf("failed to create schema_migrations: %v", err)
	}

	applied := map[string]bool{}
	var versions []string
	if err := db.SelectContext(ctx, &versions, `SELECT version FROM schema_migrations`); err != nil {
		log.Fatalf("failed to read applied migrations: %v", err)
	}
	for _, v := range versions {
		applied[v] = true
	}

	files, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		log.Fatalf("failed to list migrations: %v", err)
	}
	sort.Strings(files)

	pending := 0
	for _, name := range files {
		version := strings.TrimSuffix(name, ".sql")
		if applied[version] {
			continue
		}
		pending++

		if dryRun {
			fmt.Printf("pending: %s\n", version)
			continue
		}

		body, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			log.Fatalf("failed to read %s: %v", name, err)
		}
		if err := apply(ctx, db.DB, version, string(body)); err != nil {
			log.Fatalf("migration %s failed: %v", version, err)
		}
		fmt.Printf("applied: %s\n", version)
	}

	if pending == 0 {
		fmt.Println("Schema is up to date.")
	}
}

// apply runs one migration and records it in the same transaction
func apply(ctx context.Context, db *sqlx.DB, version, body string) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return err
	}
	return tx.Commit()
}
