package main // Entry point package

import (
	"context" // startup deadline for migrations and the object store
	"log"     // Logging library

	"github.com/joho/godotenv"    // loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/velora/study-portal/internal/auth"       // identity resolver
	"github.com/velora/study-portal/internal/config"     // Internal config loader
	"github.com/velora/study-portal/internal/database"   // MySQL pool + migrations
	"github.com/velora/study-portal/internal/handler"    // HTTP handlers
	"github.com/velora/study-portal/internal/queue"      // study event consumer
	"github.com/velora/study-portal/internal/repository" // data access layer
	"github.com/velora/study-portal/internal/router"     // Internal router setup
	"github.com/velora/study-portal/internal/storage"    // S3 object store
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("init object storage: %v", err)
	}

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	profiles := repository.NewProfileRepo(db)
	feedback := repository.NewFeedbackRepo(db)
	uploads := repository.NewUploadRepo(db)
	messages := repository.NewMessageRepo(db)

	// Identity resolver with optional redis cache; nil client just means
	// every request resolves against the profiles table.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; identity cache disabled")
	}
	resolver := auth.NewResolver(profiles, cfg.AdminEmails, rdb)

	// Handlers
	authH := handler.NewAuthHandler(cfg, users, tokens)
	profileH := handler.NewProfileHandler(profiles, resolver)
	feedbackH := handler.NewFeedbackHandler(profiles, feedback)
	uploadH := handler.NewUploadHandler(profiles, uploads, store)
	messageH := handler.NewMessageHandler(cfg, messages)
	adminH := handler.NewAdminHandler(profiles, feedback, uploads, resolver)

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, resolver, cfg.JWTSecret)
	router.RegisterParticipant(e, profileH, feedbackH, uploadH, messageH, resolver, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, resolver, cfg.JWTSecret)

	// Study activity consumer runs for the life of the process and
	// reconnects on its own; failures never take the API down.
	go func() {
		if err := queue.StartStudyConsumer(); err != nil {
			log.Printf("study consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
