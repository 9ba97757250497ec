// Package router provides analysis module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/analysis/handler"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/analysis/repository"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/analysis/service"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/config"
)

// RegisterRoutes wires the analysis module and registers its routes.
// The assembled service is returned so the scheduler can share it.
func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	tracker service.TrackerClient,
	settings *config.SettingsStore,
	cfg config.AnalysisConfig,
	logger *zap.SugaredLogger,
) service.Service {
	repo := repository.New(db, logger)
	svc := service.New(repo, tracker, settings, cfg, logger)
	h := handler.New(svc, logger)

	r.POST("/analysis/start", h.StartAnalysis)
	r.GET("/analysis/jobs", h.ListJobs)
	r.GET("/analysis/jobs/:id", h.GetJob)
	r.GET("/analysis/jobs/:id/report", h.GetReport)
	r.POST("/analysis/jobs/:id/resume", h.ResumeJob)

	return svc
}
