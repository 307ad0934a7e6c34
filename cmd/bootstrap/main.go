// cmd/bootstrap/main.go
//
// Creates the initial admin account if it does not exist yet. Username and
// password come from ADMIN_USERNAME / ADMIN_PASSWORD.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	_ "github.com/lib/pq"
	"golang.org/x/time/rate"

	"shelfwise/internal/config"
	"shelfwise/internal/identity"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required for bootstrap")
		os.Exit(1)
	}

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		logger.Error("ADMIN_PASSWORD is not set")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	svc := identity.NewService(identity.NewPostgresStore(db), rate.NewLimiter(rate.Inf, 0))

	user, created, err := svc.EnsureAdmin(ctx, username, password)
	if err != nil {
		logger.Error("failed to create admin user", "error", err)
		os.Exit(1)
	}
	if !created {
		logger.Info("admin user already exists", "username", user.Username)
		return
	}
	logger.Info("admin user created", "username", user.Username, "id", user.ID)
}
