package handlers

import (
	"fmt"
	"time"

	"github.com/SscSPs/holistic_money/cmd/docs"
	"github.com/SscSPs/holistic_money/internal/core/domain"
	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/SscSPs/holistic_money/internal/middleware"
	"github.com/SscSPs/holistic_money/internal/platform/config"
	"github.com/SscSPs/holistic_money/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	posthogClient *utils.PosthogClientWrapper,
) error {
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	api := r.Group("/api", middleware.PosthogMiddleware(posthogClient))

	registerHealthRoutes(api, services.StoreHealth)
	registerCommentRoutes(api, services.Comment)
	if err := registerAuthRoutes(api, cfg, services); err != nil {
		return err
	}

	// Everything below requires a valid bearer token
	protected := api.Group("", middleware.AuthMiddleware(services.Token))
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	registerClientRoutes(protected, services.Client, adminOnly)
	registerFinancialRoutes(protected, services.Financial, services.Access)
	registerSyncRoutes(protected, services.Sync, posthogClient)
	registerUserRoutes(protected, services.User, adminOnly)

	setupSwaggerRoutes(r, cfg)
	registerStaticRoutes(r, cfg.StaticDir)
	return nil
}

// registerAuthRoutes sets up login (rate limited) and token validation.
func registerAuthRoutes(api *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer) error {
	loginLimiter, err := middleware.NewMemoryLimiter(cfg.LoginRateLimit)
	if err != nil {
		return fmt.Errorf("failed to configure login rate limit: %w", err)
	}
	h := newAuthHandler(services.User, services.Token)

	api.POST("/login", middleware.RateLimit(loginLimiter), h.login)
	api.GET("/validate-token", middleware.AuthMiddleware(services.Token), h.validateToken)
	return nil
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
