package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/social-engine/internal/api/handler"
	"github.com/d60-Lab/social-engine/internal/api/middleware"
	"github.com/d60-Lab/social-engine/internal/config"
)

// NewRouter 组装全部路由与中间件
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(otelgin.Middleware("social-engine"))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWT.Secret))
	v1.Use(middleware.RateLimit(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst))
	{
		v1.POST("/relations/toggle", h.ToggleFollow)
		v1.POST("/relations/requests/:id/resolve", h.ResolveFollowRequest)

		v1.GET("/bookmarks", h.ListBookmarks)
		v1.POST("/bookmarks", h.AddBookmark)
		v1.DELETE("/bookmarks/:post_id", h.RemoveBookmark)

		v1.GET("/boards", h.ListBoards)
		v1.POST("/boards", h.CreateBoard)
		v1.GET("/boards/:id", h.GetBoard)
		v1.PUT("/boards/:id", h.RenameBoard)
		v1.DELETE("/boards/:id", h.DeleteBoard)
		v1.POST("/boards/:id/posts", h.AddBoardPosts)
		v1.DELETE("/boards/:id/posts/:post_id", h.RemoveBoardPost)

		v1.POST("/logout", h.Logout)
	}
	return r
}
