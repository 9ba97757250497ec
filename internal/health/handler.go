// Package health serves the readiness endpoint.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/database"
)

const probeTimeout = 5 * time.Second

// Handler answers readiness probes by pinging the database.
type Handler struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a health handler backed by the given connection.
func New(db *gorm.DB, logger *zap.SugaredLogger) *Handler {
	return &Handler{db: db, logger: logger}
}

// Response is the health probe body.
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Check handles GET /health. Reports 503 when the database is unreachable.
func (h *Handler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	checks := map[string]string{"database": "ok"}
	status := http.StatusOK
	overall := "ok"

	if err := database.HealthCheck(ctx, h.db); err != nil {
		h.logger.Warnw("health probe failed", "check", "database", "error", err)
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}

	c.JSON(status, Response{Status: overall, Checks: checks})
}
