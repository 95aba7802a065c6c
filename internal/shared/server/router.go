package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-ats/internal/analyses"
	"resume-ats/internal/services/health"
	"resume-ats/internal/shared/config"
	"resume-ats/internal/shared/metrics"
	"resume-ats/internal/shared/server/middleware"
	"resume-ats/internal/shared/server/respond"
)

// RouterDeps holds the handlers and config used to build the router.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analyses.Handler
	Health          *health.Service
	// Limiter is optional; nil builds one from Config.
	Limiter *middleware.WindowLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewWindowLimiter(deps.Config.RateLimitWindow, deps.Config.RateLimitMax, nil)
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status, ok := deps.Health.Status(c.Request.Context())
		code := http.StatusOK
		if !ok {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})

	authed := api.Group("", middleware.Identity(), middleware.RateLimit(limiter))
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(authed)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
