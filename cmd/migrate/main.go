package main

import (
	"context"
	"log"
	"time"

	"github.com/0xGingi/SuperKagi-sub001/internal/config"
	"github.com/0xGingi/SuperKagi-sub001/internal/repository"
	"github.com/0xGingi/SuperKagi-sub001/internal/storage"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	sessions := repository.NewSessionRepository(db)
	removed, err := sessions.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		log.Fatalf("purge expired sessions: %v", err)
	}

	log.Printf("Migrations applied successfully, %d expired sessions purged.", removed)
}
