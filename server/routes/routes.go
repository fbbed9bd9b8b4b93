package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"orgaccount-backend/server/handlers"
	"orgaccount-backend/server/middleware"
	"orgaccount-backend/services/token"
)

// Deps bundles everything the route table needs. Tests build it around
// in-memory services; main wires the real ones.
type Deps struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	Organizations *handlers.OrganizationHandler
	Tokens        *token.Service
	RateLimiter   *middleware.RateLimiter
	LoginLimit    middleware.RateLimitConfig
	RegisterLimit middleware.RateLimitConfig
}

// Register installs the full route table on the router.
func Register(router *gin.Engine, deps Deps) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}

	// Public endpoints
	router.POST("/users/create_user", limiter.RegistrationRateLimitMiddleware(deps.RegisterLimit), deps.Auth.Register)
	router.POST("/users/login", limiter.LoginRateLimitMiddleware(deps.LoginLimit), deps.Auth.Login)
	router.POST("/users/resend_activation", limiter.ActivationRateLimitMiddleware(deps.RegisterLimit), deps.Auth.ResendActivation)
	router.GET("/activate/:id/:ticket", deps.Auth.Activate)

	// Every authenticated endpoint also requires a completed activation
	authed := router.Group("/", middleware.Authentication(deps.Tokens), middleware.RequireActive())

	authed.PUT("/users/change_password", deps.Users.ChangePassword)
	authed.GET("/users/me", deps.Users.Me)
	authed.PUT("/users/me", deps.Users.UpdateMe)
	authed.PATCH("/users/me", deps.Users.PatchMe)
	authed.DELETE("/users/me", deps.Users.DeleteMe)
	authed.POST("/users/me/avatar", deps.Users.UploadAvatar)

	// Admin user directory
	admin := authed.Group("/", middleware.RequireAdmin())
	admin.GET("/users", deps.Users.List)
	admin.GET("/users/:id", deps.Users.Get)
	admin.PUT("/users/:id", deps.Users.Update)
	admin.PATCH("/users/:id", deps.Users.Patch)
	admin.DELETE("/users/:id", deps.Users.Delete)

	// Organization management, admin only
	admin.POST("/orgs/create_org", deps.Organizations.Create)
	admin.GET("/orgs/:id/list_users", deps.Organizations.ListUsers)
	admin.POST("/orgs/:id/add_users", deps.Organizations.AddUsers)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "orgaccount",
		})
	})
}
