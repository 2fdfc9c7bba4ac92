package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inkpress/blog-api/internal/api/handler"
	"github.com/inkpress/blog-api/internal/api/middleware"
	"github.com/inkpress/blog-api/internal/core/domain"
	"github.com/inkpress/blog-api/internal/core/ports"
	"github.com/inkpress/blog-api/internal/core/service"
	"github.com/inkpress/blog-api/internal/infrastructure/config"
	mongodb "github.com/inkpress/blog-api/internal/infrastructure/db/mongo"
	redisdb "github.com/inkpress/blog-api/internal/infrastructure/db/redis"
	"github.com/inkpress/blog-api/internal/infrastructure/google"
	"github.com/inkpress/blog-api/internal/infrastructure/queue"
	"github.com/inkpress/blog-api/pkg/logger"
)

// NewRouter builds the Echo instance with all routes registered. The view
// dispatcher is returned alongside so the caller controls its lifecycle.
// imageStore may be nil, which disables the upload endpoint.
func NewRouter(db *mongo.Database, rdb *goredis.Client, cfg *config.Config, imageStore ports.ImageStore) (*echo.Echo, *queue.Dispatcher) {
	log := logger.Get()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("blog"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	postRepo := mongodb.NewPostRepository(db)
	commentRepo := mongodb.NewCommentRepository(db)

	responseCache := redisdb.NewResponseCache(rdb, cfg.Redis.CacheTTL)
	viewDedup := redisdb.NewViewDedup(rdb)

	codec := service.NewTokenCodec(
		cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret,
		cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL,
		cfg.Auth.Issuer, cfg.Auth.Audience,
	)

	authService := service.NewAuthService(userRepo, codec, google.Verifier{ClientID: cfg.Google.ClientID}, log)
	postService := service.NewPostService(postRepo, responseCache, log)
	commentService := service.NewCommentService(commentRepo, postRepo, log)
	viewService := service.NewViewService(postRepo, viewDedup, log)
	dispatcher := queue.NewDispatcher(0, viewService, log)

	authHandler := handler.NewAuthHandler(authService, codec)
	userHandler := handler.NewUserHandler(authService)
	postHandler := handler.NewPostHandler(postService, dispatcher)
	commentHandler := handler.NewCommentHandler(commentService)

	requireAuth := middleware.Auth(codec, authService)
	optionalAuth := middleware.OptionalAuth(codec, authService)
	cached := middleware.Cache(responseCache)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/google", authHandler.LoginWithGoogle)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout, requireAuth)
	auth.POST("/logout-all", authHandler.LogoutAll, requireAuth)
	auth.PUT("/change-password", authHandler.ChangePassword, requireAuth)

	// --- User routes ---
	users := e.Group("/users")
	users.GET("/me", userHandler.Me, requireAuth)
	users.PUT("/me", userHandler.UpdateMe, requireAuth)
	users.PUT("/:id/role", userHandler.SetRole, requireAuth, adminOnly)

	// --- Post routes ---
	posts := e.Group("/posts")
	posts.GET("", postHandler.List, optionalAuth, cached)
	posts.GET("/:slug", postHandler.Get, optionalAuth, cached)
	posts.POST("", postHandler.Create, requireAuth)
	posts.PUT("/:id", postHandler.Update, requireAuth)
	posts.DELETE("/:id", postHandler.Delete, requireAuth)

	// --- Comment routes ---
	posts.GET("/:id/comments", commentHandler.ListByPost, optionalAuth)
	posts.POST("/:id/comments", commentHandler.Create, requireAuth)
	e.PUT("/comments/:id", commentHandler.Update, requireAuth)
	e.DELETE("/comments/:id", commentHandler.Delete, requireAuth)

	// --- Media routes ---
	if imageStore != nil {
		mediaService := service.NewMediaService(imageStore, log)
		mediaHandler := handler.NewMediaHandler(mediaService)
		e.POST("/media/upload", mediaHandler.Upload, requireAuth)
	}

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, dispatcher
}
