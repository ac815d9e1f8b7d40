// Command seedadmin creates the initial admin user if it does not
// already exist. Safe to run repeatedly.
package main

import (
	"context"
	"log"
	"time"

	"schooltrack/internal/auth"
	"schooltrack/internal/config"
	"schooltrack/internal/store"
)

func main() {
	cfg := config.Load()
	if cfg.SeedAdminPass == "" {
		log.Fatal("SEED_ADMIN_PASS must be set")
	}

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema apply failed: %v", err)
	}

	repo := auth.NewRepository(db.Client)
	existing, err := repo.FindByUsername(ctx, cfg.SeedAdminUser)
	if err != nil {
		log.Fatalf("lookup failed: %v", err)
	}
	if existing != nil {
		log.Printf("admin user %q already exists, nothing to do", cfg.SeedAdminUser)
		return
	}

	svc := auth.NewService(repo, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.TokenTTL, cfg.BcryptCost)
	session, err := svc.Register(ctx, cfg.SeedAdminUser, cfg.SeedAdminPass, auth.RoleAdmin)
	if err != nil {
		log.Fatalf("admin creation failed: %v", err)
	}
	log.Printf("admin user %q created (id %s)", session.Username, session.ID)
}
