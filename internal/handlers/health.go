package handlers

import (
	"net/http"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/database"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/logging"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	db     *database.Database
	logger logging.Logger
}

func NewHealthHandler(db *database.Database, logger logging.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

func (h *HealthHandler) Health(c *gin.Context) {
	info := h.db.GetInfo()
	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.logger.Warn(c.Request.Context(), "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": info})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": info})
}
