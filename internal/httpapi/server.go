// Package httpapi exposes roadmap generation, progress and projects over
// HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/pathwise/internal/projects"
	"github.com/abhisek/pathwise/internal/prompt"
	"github.com/abhisek/pathwise/internal/roadmap"
)

// Generator produces a validated roadmap for params.
type Generator interface {
	Generate(ctx context.Context, params prompt.Params) ([]roadmap.Node, error)
}

// Config holds the handler dependencies. Generator may be nil, in which
// case generation requests answer 503.
type Config struct {
	Generator Generator
	Roadmaps  *roadmap.Repository
	Projects  *projects.Board
	Logger    *zap.Logger
}

type handler struct {
	gen      Generator
	roadmaps *roadmap.Repository
	projects *projects.Board
	log      *zap.Logger
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(cfg Config) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &handler{
		gen:      cfg.Generator,
		roadmaps: cfg.Roadmaps,
		projects: cfg.Projects,
		log:      log.Named("http"),
	}

	router := gin.New()
	router.Use(requestLogger(h.log), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/roadmaps/:session/generate", h.generateRoadmap)
		api.GET("/roadmaps/:session", h.getRoadmap)
		api.DELETE("/roadmaps/:session", h.deleteRoadmap)
		api.GET("/roadmaps/:session/progress", h.getProgress)
		api.PUT("/roadmaps/:session/nodes/:node/completed", h.setCompleted)

		api.GET("/projects", h.listProjects)
		api.POST("/projects", h.createProject)
		api.GET("/projects/:id", h.getProject)
		api.PATCH("/projects/:id", h.updateProject)
		api.DELETE("/projects/:id", h.deleteProject)
		api.POST("/projects/:id/activate", h.activateProject)
		api.POST("/projects/:id/complete", h.completeProject)
	}

	return router
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Warn("request", fields...)
		default:
			log.Debug("request", fields...)
		}
	}
}
