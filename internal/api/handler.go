package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Ingestor is the part of the pipeline the admin API drives
type Ingestor interface {
	TriggerIngestion(ctx context.Context) (pipeline.RunSummary, error)
	LastSuccessfulRun(ctx context.Context) (time.Time, bool, error)
}

// HealthChecker reports backing store health
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler serves the ingestion admin endpoints
type Handler struct {
	ingestor Ingestor
	health   HealthChecker
}

// NewHandler creates a handler
func NewHandler(ingestor Ingestor, health HealthChecker) *Handler {
	return &Handler{ingestor: ingestor, health: health}
}

// NewRouter builds the gin engine with every admin route registered
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", h.Health)
	r.POST("/fantasy-data/update", h.TriggerUpdate)
	r.GET("/fantasy-data/last-update", h.LastUpdate)

	return r
}

// TriggerUpdate runs ingestion synchronously and returns the run summary
func (h *Handler) TriggerUpdate(c *gin.Context) {
	summary, err := h.ingestor.TriggerIngestion(c.Request.Context())
	if errors.Is(err, pipeline.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// LastUpdate returns the completion time of the newest published run
func (h *Handler) LastUpdate(c *gin.Context) {
	t, ok, err := h.ingestor.LastSuccessfulRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no successful update found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"last_update": t.UTC().Format(time.RFC3339)})
}

// Health reports database connectivity
func (h *Handler) Health(c *gin.Context) {
	if err := h.health.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Admin request")
	}
}
