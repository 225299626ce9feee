// Command cleanup-supervisors deletes supervisor accounts stuck in
// pending verification past the configured TTL.
//
// Usage:
//
//	cleanup-supervisors
//
// Requires DATABASE_DSN; CLEANUP_SUPERVISOR_PENDING_TTL overrides the
// default of 168h.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	supervisorrepo "github.com/internlog/internlog-backend/internal/adapter/postgres/supervisor"
)

func main() {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		log.Fatal("DATABASE_DSN environment variable is required")
	}

	ttl := 168 * time.Hour
	if v := os.Getenv("CLEANUP_SUPERVISOR_PENDING_TTL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("parse CLEANUP_SUPERVISOR_PENDING_TTL: %v", err)
		}
		ttl = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	removed, err := supervisorrepo.New(pool).DeleteStalePending(ctx, time.Now().Add(-ttl))
	if err != nil {
		log.Fatalf("cleanup supervisors: %v", err)
	}

	fmt.Printf("Deleted %d stale pending supervisors.\n", removed)
}
