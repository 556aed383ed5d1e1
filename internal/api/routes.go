package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"careerforge/internal/api/middleware"
	"careerforge/internal/auth"
	"careerforge/internal/config"
	"careerforge/internal/storage"
)

// RegisterRoutes 注册认证接口、后台管理接口与公开招聘页路由。
func RegisterRoutes(
	router *gin.Engine,
	cfg *config.Config,
	db *gorm.DB,
	asynqClient *asynq.Client,
	authService *auth.AuthService,
	redisClient *redis.Client,
	logger *slog.Logger,
	storageClient *storage.Client,
) {
	authHandler := NewAuthHandler(db, authService, redisClient, logger,
		cfg.Auth.LoginRateLimitPerHour, cfg.Auth.LoginLockThreshold, cfg.Auth.LoginLockTTL, cfg.API.CookieDomain)
	careerPageHandler := NewCareerPageHandler(db, redisClient, asynqClient, logger, cfg.API.PublicBaseURL)
	companyHandler := NewCompanyHandler(db, storageClient, logger, cfg.Clamd.Addr)
	jobHandler := NewJobHandler(db, storageClient, asynqClient, logger)
	publicHandler := NewPublicHandler(db, redisClient, storageClient, logger, cfg.API.PublicBaseURL)
	wsHandler := NewWsHandler(redisClient, authService, logger, nil)
	authMiddleware := middleware.AuthMiddleware(authService)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
		}

		pageGroup := v1.Group("/career-pages")
		pageGroup.Use(authMiddleware)
		{
			pageGroup.GET("", careerPageHandler.GetDraft)
			pageGroup.PUT("", careerPageHandler.SaveDraft)
			pageGroup.POST("/publish", careerPageHandler.Publish)
			pageGroup.GET("/preview", careerPageHandler.Preview)
			pageGroup.GET("/components", careerPageHandler.Palette)
		}

		companyGroup := v1.Group("/companies")
		companyGroup.Use(authMiddleware)
		{
			companyGroup.GET("/me", companyHandler.GetProfile)
			companyGroup.PATCH("/branding", companyHandler.UpdateBranding)
			companyGroup.POST("/logo", companyHandler.UploadLogo)
		}

		jobGroup := v1.Group("/jobs")
		jobGroup.Use(authMiddleware)
		{
			jobGroup.GET("", jobHandler.List)
			jobGroup.POST("", jobHandler.Create)
			jobGroup.PUT("/:id", jobHandler.Update)
			jobGroup.DELETE("/:id", jobHandler.Delete)
			jobGroup.POST("/import", jobHandler.Import)
		}
	}

	router.GET("/:companySlug/careers", publicHandler.CareersPage)
}
