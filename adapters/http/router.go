package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/screenvault/internal/metrics"
	"github.com/khoahotran/screenvault/pkg/auth"
	"github.com/khoahotran/screenvault/pkg/logger"
)

type RouterDeps struct {
	Logger      logger.Logger
	JWT         *auth.JWTService
	Metrics     *metrics.Metrics
	ViewLimiter RateLimiter

	Auth   *AuthHandler
	Videos *VideoHandler
	RSS    *RSSHandler
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(deps.Metrics.GinMiddleware())
	router.Use(ErrorMiddleware(deps.Logger))

	authMiddleware := AuthMiddleware(deps.JWT, deps.Logger)
	optionalAuth := OptionalAuthMiddleware(deps.JWT)

	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
		api.POST("/auth/login", deps.Auth.Login)
		api.GET("/feed.rss", deps.RSS.GenerateRSS)

		api.GET("/videos", deps.Videos.ListPublicVideos)
		api.GET("/videos/:id", optionalAuth, deps.Videos.GetVideo)
		api.GET("/videos/:id/meta", deps.Videos.GetVideoMeta)
		api.POST("/videos/:id/views", RateLimitMiddleware(deps.ViewLimiter), optionalAuth, deps.Videos.RecordView)

		private := api.Group("/")
		private.Use(authMiddleware)
		{
			private.GET("/me", deps.Auth.Me)
			private.GET("/me/videos", deps.Videos.ListMyVideos)

			private.POST("/videos", deps.Videos.CreateVideo)
			private.PATCH("/videos/:id", deps.Videos.UpdateVideo)
			private.PUT("/videos/:id/visibility", deps.Videos.UpdateVisibility)
			private.DELETE("/videos/:id", deps.Videos.DeleteVideo)
		}
	}

	return router
}
