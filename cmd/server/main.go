package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"orgaccount-backend/server/handlers"
	"orgaccount-backend/server/middleware"
	"orgaccount-backend/server/routes"
	"orgaccount-backend/services/account"
	"orgaccount-backend/services/activation"
	"orgaccount-backend/services/organization"
	"orgaccount-backend/services/token"
	"orgaccount-backend/shared/config"
	"orgaccount-backend/shared/database"
	"orgaccount-backend/shared/database/repository"
	"orgaccount-backend/shared/email"
	"orgaccount-backend/shared/storage"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Seed bootstrap data (default organization, super admin)
	if err := database.SeedDatabase(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	// Repositories
	db := database.GetDB()
	accountRepo := repository.NewGormAccountRepository(db)
	tokenRepo := repository.NewGormTokenRepository(db)
	orgRepo := repository.NewGormOrganizationRepository(db)

	// Services
	dispatcher := email.NewSMTPDispatcher(cfg)
	activationTTL := time.Duration(cfg.GetActivationTTLHours()) * time.Hour
	activationService := activation.NewService(accountRepo, dispatcher, cfg.SecretKey, activationTTL, cfg.BaseURL)
	accountService := account.NewService(accountRepo, orgRepo, activationService, cfg.DefaultOrganizationName)
	tokenService := token.NewService(tokenRepo, accountRepo)
	orgService := organization.NewService(orgRepo, accountRepo)

	// Object storage for avatar uploads; the server still runs without it
	var objectStorage storage.ObjectStorage
	if minioStorage, err := storage.NewMinIOStorage(cfg); err != nil {
		log.Printf("⚠️ MinIO unavailable, avatar uploads disabled: %v", err)
	} else {
		objectStorage = minioStorage
	}

	// Redis-backed rate limiter; fails open when redis is down
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.GetRedisDB(),
	})
	rateLimiter := middleware.NewRateLimiter(redisClient)

	router := gin.Default()

	routes.Register(router, routes.Deps{
		Auth:          handlers.NewAuthHandler(accountService, tokenService, activationService),
		Users:         handlers.NewUserHandler(accountService, objectStorage, cfg.AvatarAllowedTypesList()),
		Organizations: handlers.NewOrganizationHandler(orgService),
		Tokens:        tokenService,
		RateLimiter:   rateLimiter,
		LoginLimit: middleware.RateLimitConfig{
			MaxRequests: cfg.GetLoginRateLimitMaxAttempts(),
			TimeWindow:  time.Duration(cfg.GetLoginRateLimitWindowSeconds()) * time.Second,
		},
		RegisterLimit: middleware.RateLimitConfig{
			MaxRequests: cfg.GetRegisterRateLimitMaxAttempts(),
			TimeWindow:  time.Duration(cfg.GetRegisterRateLimitWindowHours()) * time.Hour,
		},
	})

	log.Printf("OrgAccount service starting on port %s...", cfg.ServerPort)
	router.Run(":" + cfg.ServerPort)
}
