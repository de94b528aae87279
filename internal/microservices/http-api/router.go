package httpapi

import (
	"log/slog"
	"net/http"

	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Categories *handler.NamedSlugHandler
	Genres     *handler.NamedSlugHandler
	Titles     *handler.TitleHandler
	Reviews    *handler.ReviewHandler
	Comments   *handler.CommentHandler
}

type RouterConfig struct {
	Logger         *slog.Logger
	Authenticator  middleware.Authenticator
	AuthLimiter    *middleware.IPRateLimiter
	DB             handler.Pinger
	MetricsEnabled bool
}

// NewRouter builds the gin engine serving /api/v1, /healthz and optionally /metrics.
func NewRouter(cfg RouterConfig, h Handlers) (*gin.Engine, error) {
	if err := dto.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(cfg.Logger))
	if cfg.MetricsEnabled {
		metrics.Init()
		r.Use(middleware.HTTPMetrics())
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	if cfg.DB != nil {
		r.GET("/healthz", handler.Health(cfg.DB))
	}

	api := r.Group("/api/v1")

	// PUT on reviews and comments is rejected for every caller before authentication runs
	api.PUT("/titles/:title_id/reviews/:review_id", handler.RejectFullReplace)
	api.PUT("/titles/:title_id/reviews/:review_id/comments/:comment_id", handler.RejectFullReplace)

	authed := api.Group("", middleware.Authenticate(cfg.Authenticator))
	h.Auth.RegisterRoutes(authed, middleware.RateLimit(cfg.AuthLimiter))
	h.Users.RegisterRoutes(authed)
	h.Categories.RegisterRoutes(authed, "/categories")
	h.Genres.RegisterRoutes(authed, "/genres")
	h.Titles.RegisterRoutes(authed)
	h.Reviews.RegisterRoutes(authed)
	h.Comments.RegisterRoutes(authed)

	return r, nil
}
