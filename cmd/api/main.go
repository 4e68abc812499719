package main

import (
	"fmt"
	"log"
	"net/http"
	"orthoiq-api/internal/api/controllers"
	"orthoiq-api/internal/api/handlers"
	"orthoiq-api/internal/config"
	"orthoiq-api/internal/database"
	"orthoiq-api/internal/middleware"
	"orthoiq-api/internal/repository"
	"orthoiq-api/internal/services"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	// Initialize database connection
	db, err := database.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Get underlying *sql.DB instance for connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get underlying *sql.DB instance:", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	rateLimitRepo := repository.NewRateLimitRepository(db)
	consultationRepo := repository.NewConsultationRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	auditRepo := repository.NewReviewAuditLogRepository(db)
	requestLogRepo := repository.NewRequestLogRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// Initialize services
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}
	relaySecretHash := os.Getenv("QUICKAUTH_RELAY_SECRET_HASH")
	if relaySecretHash == "" {
		log.Fatal("QUICKAUTH_RELAY_SECRET_HASH environment variable is required")
	}

	rateConfig := config.NewRateLimitConfig()
	reviewConfig := config.NewReviewConfig()

	var cacheService services.CacheService
	if redisCache, err := services.NewRedisCacheService(config.NewCacheConfig()); err != nil {
		log.Printf("Warning: Redis unavailable, running without cache: %v", err)
	} else {
		cacheService = redisCache
	}

	authService := services.NewAuthService(userRepo, jwtSecret)
	rateLimitService := services.NewRateLimitService(rateLimitRepo, rateConfig)
	claudeService := services.NewClaudeService(config.NewClaudeConfig())
	agentsService := services.NewAgentsService(config.NewAgentsConfig())
	notificationService := services.NewNotificationService(config.NewEmailConfig())
	consultationService := services.NewConsultationService(consultationRepo, claudeService, agentsService, cacheService)
	reviewService := services.NewReviewService(consultationRepo, auditRepo, notificationService, userRepo, cacheService, reviewConfig)
	milestoneService := services.NewMilestoneService(milestoneRepo, consultationRepo)
	requestLogService := services.NewRequestLogService(requestLogRepo)
	statsService := services.NewStatsService(statsRepo, rateLimitRepo, consultationRepo, rateConfig)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, relaySecretHash)
	questionHandler := handlers.NewQuestionHandler(consultationService)
	consultationHandler := handlers.NewConsultationHandler(consultationService)
	rateLimitHandler := handlers.NewRateLimitHandler(rateLimitService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	milestoneHandler := handlers.NewMilestoneHandler(milestoneService)
	statsHandler := handlers.NewStatsHandler(statsService)
	auditLogHandler := handlers.NewAuditLogHandler(auditRepo)
	requestLogHandler := handlers.NewRequestLogHandler(requestLogService)

	// Initialize middleware
	rateLimiter := middleware.NewRateLimiter(rateLimitService)
	requestLogger := middleware.NewRequestLogger(requestLogService)

	// Initialize router
	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)

	// Public routes
	router.HandleFunc("/auth/session", authHandler.CreateSession).Methods("POST")
	router.HandleFunc("/health", controllers.HealthCheckHandler(db, config.NewAgentsConfig())).Methods("GET")

	// Question submission: anonymous traffic is allowed at the basic tier,
	// so auth is optional but the persisted rate limit always applies.
	questionRouter := router.PathPrefix("/api/v1/questions").Subrouter()
	questionRouter.Use(middleware.OptionalAuthMiddleware(authService))
	questionRouter.Use(rateLimiter.RateLimit)
	questionRouter.HandleFunc("", questionHandler.AskQuestion).Methods("POST")

	// Public API routes (optional auth for privacy gating)
	publicRouter := router.PathPrefix("/api/v1").Subrouter()
	publicRouter.Use(middleware.OptionalAuthMiddleware(authService))
	publicRouter.HandleFunc("/ratelimit", rateLimitHandler.CheckRateLimit).Methods("GET")
	publicRouter.HandleFunc("/consultations/{id}", consultationHandler.GetConsultation).Methods("GET")
	publicRouter.HandleFunc("/consultations/{id}/milestones", milestoneHandler.ListFeedback).Methods("GET")
	publicRouter.HandleFunc("/consultations/{id}/milestones", milestoneHandler.SubmitFeedback).Methods("POST")

	// Authenticated routes
	userRouter := router.PathPrefix("/api/v1").Subrouter()
	userRouter.Use(middleware.AuthMiddleware(authService))
	userRouter.Use(requestLogger.LogRequest)
	userRouter.HandleFunc("/consultations", consultationHandler.ListMyConsultations).Methods("GET")
	userRouter.HandleFunc("/consultations/{id}/privacy", consultationHandler.SetPrivacy).Methods("PATCH")

	// Admin / reviewer routes
	adminRouter := router.PathPrefix("/api/v1/admin").Subrouter()
	adminRouter.Use(middleware.AdminMiddleware(authService))
	adminRouter.HandleFunc("/reviews", reviewHandler.SubmitReview).Methods("POST")
	adminRouter.HandleFunc("/reviews/pending", reviewHandler.ListPendingReviews).Methods("GET")
	adminRouter.HandleFunc("/stats", statsHandler.GetDashboardStats).Methods("GET")
	adminRouter.HandleFunc("/audit-logs", auditLogHandler.GetAuditLogs).Methods("GET")
	adminRouter.HandleFunc("/request-logs", requestLogHandler.GetUserLogs).Methods("GET")

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000", "https://orthoiq.app"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Session-ID",
			"X-OrthoIQ-Platform",
		},
		ExposedHeaders: []string{
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create server with timeouts
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      corsMiddleware.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server starting on port %s", port)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
