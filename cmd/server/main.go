package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/profitboysub0-max/social-music-app/internal/router"
	"github.com/profitboysub0-max/social-music-app/pkg/config"
	"github.com/profitboysub0-max/social-music-app/pkg/firebase"
	"github.com/profitboysub0-max/social-music-app/pkg/logger"
	"github.com/profitboysub0-max/social-music-app/pkg/validators"

	firebaseAuth "firebase.google.com/go/v4/auth"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize structured logging
	err := logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags:      map[string]string{"environment": cfg.Env},
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Flush(2 * time.Second)

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	// Initialize Firebase; optional, login falls back to email/password
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	var authClient *firebaseAuth.Client
	if firebaseApp != nil {
		authClient = firebaseApp.AuthClient
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	pushService := router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, authClient)
	defer pushService.Stop()

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
