package main

import (
	"log/slog"
	"os"

	"github.com/courier-dev/courier/db"
	"github.com/courier-dev/courier/internal/auth"
	"github.com/courier-dev/courier/internal/logging"
	"github.com/courier-dev/courier/internal/router"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded", "error", err)
	}

	logging.Setup()

	if err := auth.InitJWTSecret(); err != nil {
		slog.Error("Failed to initialize JWT secret", "error", err)
		os.Exit(1)
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		slog.Error("DATABASE_URL is not set")
		os.Exit(1)
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.MigrateDatabase(); err != nil {
		slog.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	r := router.NewRouter()

	port := os.Getenv("PORT")

	if port == "" {
		port = "3000"
		slog.Info("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
