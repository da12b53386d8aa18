package routes

import (
	"net/http"
	"time"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/config"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/database"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/handlers"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/logging"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/middleware"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/services"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// SetupRoutes wires services and handlers onto a new engine. When store is a
// LocalStorage its directory is served read-only under the upload URL prefix.
func SetupRoutes(db *database.Database, store storage.Storage, cfg *config.Config, logger logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.Default())

	// 서비스 초기화
	tokenService := services.NewTokenService(cfg)
	authService := services.NewAuthService(db.DB, tokenService, logger)
	uploadService := services.NewUploadService(store, cfg.Upload.MaxSize, logger)
	postService := services.NewPostService(db.DB, uploadService, logger)
	commentService := services.NewCommentService(db.DB, logger)
	userService := services.NewUserService(db.DB, logger)

	// 핸들러 초기화
	authHandler := handlers.NewAuthHandler(authService, logger)
	postHandler := handlers.NewPostHandler(postService, cfg.Upload.MaxSize, logger)
	commentHandler := handlers.NewCommentHandler(commentService, logger)
	uploadHandler := handlers.NewUploadHandler(uploadService, cfg.Upload.MaxSize, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	healthHandler := handlers.NewHealthHandler(db, logger)

	if local, ok := store.(*storage.LocalStorage); ok {
		r.StaticFS(cfg.Upload.URLPrefix, gin.Dir(local.Dir(), false))
	}

	limiter := middleware.NewRateLimiterMemoryStore(middleware.RateLimiterConfig{
		Rate:      rate.Limit(cfg.RateLimit.RPS),
		Burst:     cfg.RateLimit.Burst,
		ExpiresIn: 3 * time.Minute,
	})

	api := r.Group(cfg.Server.APIPrefix)
	api.Use(middleware.Identify(tokenService))
	requireAuth := middleware.RequireAuth()

	// 인증 필요없는 라우트
	api.GET("/health", healthHandler.Health)
	api.GET("/posts", postHandler.GetPosts)
	api.GET("/posts/:id", postHandler.GetPost)
	api.GET("/posts/:id/comments", commentHandler.GetComments)
	api.GET("/search", userHandler.Search)

	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(limiter))
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	// 인증 필요한 라우트
	protected := api.Group("")
	protected.Use(requireAuth)
	{
		protected.POST("/posts", postHandler.CreatePost)
		protected.POST("/posts/:id/approve", postHandler.ApprovePost)
		protected.POST("/posts/:id/share", postHandler.SharePost)
		protected.POST("/posts/:id/comments", commentHandler.CreateComment)
		protected.POST("/upload", uploadHandler.Upload)
		protected.GET("/users/me", userHandler.GetMe)
		protected.PUT("/users/me", userHandler.UpdateMe)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}
