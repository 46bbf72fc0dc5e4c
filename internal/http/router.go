// Package http serves the local observability surface: health, the host
// bridge endpoint, the command catalog, and the capture archive.
package http

import (
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saker-ai/tauri-agent/internal/hostbridge"
	"github.com/saker-ai/tauri-agent/internal/protocol"
	"github.com/saker-ai/tauri-agent/internal/storage"
)

// NewRouter builds the HTTP surface. archive may be nil when capture
// archiving is disabled; the capture routes then serve empty results.
func NewRouter(bridgeHandler *hostbridge.Handler, archive *storage.Archive, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"bridge": bridgeHandler.Status(),
		})
	})

	router.GET("/bridge", func(c *gin.Context) {
		bridgeHandler.Handle(c.Writer, c.Request)
	})

	router.GET("/commands", func(c *gin.Context) {
		entries, err := protocol.Catalog()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"commands": entries})
	})

	router.GET("/captures", func(c *gin.Context) {
		if archive == nil {
			c.JSON(http.StatusOK, gin.H{"captures": []storage.CaptureInfo{}})
			return
		}
		list, err := archive.List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"captures": list})
	})

	router.GET("/captures/:id", func(c *gin.Context) {
		if archive == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "capture archive disabled"})
			return
		}
		rec, err := archive.Get(c.Param("id"))
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, fs.ErrNotExist) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, rec)
	})

	router.DELETE("/captures/:id", func(c *gin.Context) {
		if archive == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "capture archive disabled"})
			return
		}
		if err := archive.Delete(c.Param("id")); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, fs.ErrNotExist) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
	})

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		if logger == nil {
			return
		}
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("latency", latency),
		)
	}
}
