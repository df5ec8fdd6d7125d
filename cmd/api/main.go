package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/splitzy/splitzy/docs"
	"github.com/splitzy/splitzy/internal/bill"
	"github.com/splitzy/splitzy/internal/config"
	"github.com/splitzy/splitzy/internal/database"
	"github.com/splitzy/splitzy/internal/notification"
	"github.com/splitzy/splitzy/internal/receipt"
	"github.com/splitzy/splitzy/internal/share"
	"github.com/splitzy/splitzy/internal/user"
	mw "github.com/splitzy/splitzy/pkg/middleware"
)

// @title           Splitzy API
// @version         1.0
// @description     Bill splitting backend with deterministic integer-cent allocation
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	// Snapshot cache is optional; run uncached when Redis is unavailable
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Printf("Redis unavailable, running without snapshot cache: %v", err)
	} else if redisClient != nil {
		defer redisClient.Close()
		log.Println("Connected to Redis successfully")
	}

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Notification feature (device tokens come from the user repository)
	notificationRepo := notification.NewRepository(db)
	pushSender := notification.NewPushSender(cfg.FCMServerKey)
	notificationService := notification.NewService(notificationRepo, userRepo, pushSender)
	notificationHandler := notification.NewHandler(notificationService)

	// Bill feature
	billRepo := bill.NewRepository(db)
	billService := bill.NewService(billRepo, notificationService)
	billHandler := bill.NewHandler(billService)

	// Share feature
	shareRepo := share.NewRepository(db)
	shareCache := share.NewCache(redisClient)
	shareService := share.NewService(shareRepo, billService, shareCache, cfg.AppURL)
	shareHandler := share.NewHandler(shareService)

	// Receipt structuring feature
	receiptClient := receipt.NewClient(cfg.GeminiURL, cfg.GeminiAPIKey)
	receiptHandler := receipt.NewHandler(receiptClient)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	// Unauthenticated viewer routes for share links
	r.Mount("/public", shareHandler.PublicRoutes())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(cfg.JWTSecret))

		billRoutes := billHandler.Routes()
		shareHandler.Register(billRoutes)

		r.Mount("/bills", billRoutes)
		r.Mount("/receipts", receiptHandler.Routes())
		r.Mount("/users", userHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
