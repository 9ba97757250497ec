// Package handler provides HTTP handlers for analysis endpoints.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	analysisModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/analysis/model"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/analysis/service"
)

// Handler handles HTTP requests for analysis endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new analysis handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// StartAnalysis handles POST /analysis/start request.
// @Summary Start a new analysis job over an area path
// @Tags Analysis
// @Accept json
// @Produce json
// @Param request body analysisModel.StartAnalysisRequest true "Request"
// @Success 202 {object} map[string]analysisModel.JobResponse "Response wrapped in job object"
// @Failure 400 {object} ErrorResponse "Bad request (VALIDATION_FAILED)"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /analysis/start [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) StartAnalysis(c *gin.Context) {
	var req analysisModel.StartAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "VALIDATION_FAILED", "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Start(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, analysisModel.ErrInvalidAreaPath) ||
			errors.Is(err, analysisModel.ErrInvalidDateRange) ||
			errors.Is(err, analysisModel.ErrInvalidChunkSize) {
			errorResponse(c, "VALIDATION_FAILED", err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Errorw("error starting analysis", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusAccepted, map[string]interface{}{
		"job": resp,
	})
}

// ListJobs handles GET /analysis/jobs request.
// @Summary List analysis jobs, newest first
// @Tags Analysis
// @Produce json
// @Param limit query int false "Maximum number of jobs to return"
// @Param offset query int false "Number of jobs to skip"
// @Success 200 {object} analysisModel.JobListResponse
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /analysis/jobs [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ListJobs(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	resp, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Errorw("error listing analysis jobs", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetJob handles GET /analysis/jobs/:id request.
// @Summary Get one analysis job with its progress
// @Tags Analysis
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]analysisModel.JobResponse "Response wrapped in job object"
// @Failure 400 {object} ErrorResponse "Bad request (VALIDATION_FAILED)"
// @Failure 404 {object} ErrorResponse "Job not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /analysis/jobs/{id} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}

	resp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, analysisModel.ErrJobNotFound) {
			notFoundResponse(c, "analysis job not found")
			return
		}
		h.logger.Errorw("error getting analysis job", "job_id", id, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"job": resp,
	})
}

// GetReport handles GET /analysis/jobs/:id/report request.
// @Summary Get the finalized report of a completed job
// @Tags Analysis
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} analysisModel.ReportResponse
// @Failure 400 {object} ErrorResponse "Bad request (VALIDATION_FAILED)"
// @Failure 404 {object} ErrorResponse "Job not found"
// @Failure 409 {object} ErrorResponse "Job not completed (ANALYSIS_NOT_COMPLETED)"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /analysis/jobs/{id}/report [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetReport(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}

	resp, err := h.service.Report(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, analysisModel.ErrJobNotFound) {
			notFoundResponse(c, "analysis job not found")
			return
		}
		if errors.Is(err, analysisModel.ErrJobNotCompleted) {
			errorResponse(c, "ANALYSIS_NOT_COMPLETED", "analysis job is not completed", http.StatusConflict)
			return
		}
		h.logger.Errorw("error getting analysis report", "job_id", id, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ResumeJob handles POST /analysis/jobs/:id/resume request.
// @Summary Resume a pending or failed job, recomputing only missing chunks
// @Tags Analysis
// @Produce json
// @Param id path string true "Job ID"
// @Success 202 {object} map[string]analysisModel.JobResponse "Response wrapped in job object"
// @Failure 400 {object} ErrorResponse "Bad request (VALIDATION_FAILED)"
// @Failure 404 {object} ErrorResponse "Job not found"
// @Failure 409 {object} ErrorResponse "Job not resumable (JOB_NOT_RESUMABLE)"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /analysis/jobs/{id}/resume [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ResumeJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}

	resp, err := h.service.Resume(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, analysisModel.ErrJobNotFound) {
			notFoundResponse(c, "analysis job not found")
			return
		}
		if errors.Is(err, analysisModel.ErrJobNotResumable) ||
			errors.Is(err, analysisModel.ErrJobAlreadyRunning) {
			errorResponse(c, "JOB_NOT_RESUMABLE", err.Error(), http.StatusConflict)
			return
		}
		h.logger.Errorw("error resuming analysis job", "job_id", id, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusAccepted, map[string]interface{}{
		"job": resp,
	})
}

// jobID parses the :id path parameter, responding with 400 on garbage.
func jobID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorResponse(c, "VALIDATION_FAILED", "id must be a UUID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an integer query parameter, falling back to a default on
// absence or garbage.
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
