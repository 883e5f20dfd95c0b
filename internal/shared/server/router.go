package server

import (
	"github.com/gin-gonic/gin"

	"cvmanager-backend/internal/cvs"
	"cvmanager-backend/internal/services/health"
	"cvmanager-backend/internal/shared/config"
	"cvmanager-backend/internal/shared/metrics"
	"cvmanager-backend/internal/shared/server/middleware"
	"cvmanager-backend/internal/shared/server/respond"
)

// RouterDeps carries everything the router needs to mount routes.
type RouterDeps struct {
	Config    config.Config
	CVHandler *cvs.Handler
	Health    *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, 200, deps.Health.Status())
	})
	deps.CVHandler.RegisterRoutes(api)

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
