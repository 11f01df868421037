package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/vaani/audio"
	"github.com/skillsenselab/vaani/logger"
	"github.com/skillsenselab/vaani/tempstore"
	"github.com/skillsenselab/vaani/transcription"
)

// Handler serves the public transcription API.
type Handler struct {
	engine    *transcription.Engine
	validator *audio.Validator
	store     *tempstore.Store
	log       *logger.Logger
}

// NewHandler wires the API handler to its collaborators.
func NewHandler(engine *transcription.Engine, validator *audio.Validator, store *tempstore.Store) *Handler {
	return &Handler{
		engine:    engine,
		validator: validator,
		store:     store,
		log:       logger.WithComponent("api"),
	}
}

// Register mounts the API routes on the Gin engine.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.root)

	v1 := r.Group("/api/v1")
	v1.POST("/transcribe", h.transcribe)
	v1.POST("/transcribe/batch", h.transcribeBatch)
	v1.GET("/languages", h.languages)
	v1.GET("/stats", h.stats)
}

// root describes the service for quick manual discovery.
func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "vaani",
		"endpoints": gin.H{
			"transcribe":       "POST /api/v1/transcribe",
			"transcribe_batch": "POST /api/v1/transcribe/batch",
			"languages":        "GET /api/v1/languages",
			"stats":            "GET /api/v1/stats",
			"health":           "GET /health",
		},
	})
}
