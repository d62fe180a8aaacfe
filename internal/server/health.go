package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/abduss/filegate/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const readinessTimeout = 5 * time.Second

func registerHealthRoutes(router *gin.RouterGroup, deps Dependencies, log *zap.Logger) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	router.GET("/test-firestore-write", func(c *gin.Context) {
		if deps.Probe == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "metadata store not configured"})
			return
		}
		id, err := deps.Probe.WriteProbe(c.Request.Context())
		if err != nil {
			logger.For(log, c).Error("metadata store write probe", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "id": id})
	})

	router.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		if deps.DB != nil {
			if err := deps.DB.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":    "degraded",
					"component": "postgres",
					"error":     err.Error(),
				})
				return
			}
		}

		if err := checkObjectStore(ctx, deps); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "degraded",
				"component": "object_store",
				"error":     err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func checkObjectStore(ctx context.Context, deps Dependencies) error {
	if deps.ObjectStore == nil {
		return nil
	}
	exists, err := deps.ObjectStore.BucketExists(ctx, deps.Config.ObjectStore.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", deps.Config.ObjectStore.Bucket)
	}
	return nil
}
