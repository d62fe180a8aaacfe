package server

import (
	"context"
	"net/http"

	"github.com/abduss/filegate/internal/auth"
	"github.com/abduss/filegate/internal/config"
	"github.com/abduss/filegate/internal/file"
	"github.com/abduss/filegate/internal/logger"
	"github.com/abduss/filegate/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether the metadata store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BucketChecker reports whether the object store bucket is reachable.
type BucketChecker interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
}

// ProbeWriter performs a throwaway write against the metadata store.
type ProbeWriter interface {
	WriteProbe(ctx context.Context) (string, error)
}

// Dependencies is the application context: every process-wide client the handlers need.
type Dependencies struct {
	Config      config.Config
	Logger      *zap.Logger
	DB          Pinger
	ObjectStore BucketChecker
	Probe       ProbeWriter
	Verifier    auth.Verifier
	FileService *file.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(logger.Middleware(log))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.For(log, c).Error("panic recovered", zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))
	router.Use(metrics.Middleware())
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group(deps.Config.Server.Prefix)
	registerHealthRoutes(api, deps, log)

	if deps.Verifier != nil && deps.FileService != nil {
		protected := api.Group("/")
		protected.Use(auth.Middleware(deps.Verifier))
		file.RegisterRoutes(protected, deps.FileService, log)
	}

	return router
}
