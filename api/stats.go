package api

import (
	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/vaani/server"
)

// stats handles GET /api/v1/stats.
func (h *Handler) stats(c *gin.Context) {
	server.RespondOK(c, h.engine.Stats().Snapshot())
}
