// Package model provides data transfer objects and domain models for the analysis module.
package model

import (
	metricsModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/model"
)

// DateLayout is the wire format of the optional analysis window bounds.
const DateLayout = "2006-01-02"

// StartAnalysisRequest represents the request to start an analysis.
type StartAnalysisRequest struct {
	AreaPath  string   `json:"area_path" binding:"required"`
	ItemTypes []string `json:"item_types"`
	DateFrom  string   `json:"date_from"`
	DateTo    string   `json:"date_to"`
	ChunkSize int      `json:"chunk_size"`
}

// JobResponse represents an analysis job in API responses.
type JobResponse struct {
	ID              string   `json:"id"`
	Status          string   `json:"status"`
	AreaPath        string   `json:"area_path"`
	ItemTypes       []string `json:"item_types"`
	DateFrom        string   `json:"date_from,omitempty"`
	DateTo          string   `json:"date_to,omitempty"`
	TotalItems      int      `json:"total_items"`
	TotalChunks     int      `json:"total_chunks"`
	CompletedChunks int      `json:"completed_chunks"`
	FailedItems     int      `json:"failed_items"`
	Error           string   `json:"error,omitempty"`
	CreatedAt       string   `json:"createdAt"`
	StartedAt       string   `json:"startedAt,omitempty"`
	CompletedAt     string   `json:"completedAt,omitempty"`
}

// JobListResponse represents the paginated job listing.
type JobListResponse struct {
	Jobs  []*JobResponse `json:"jobs"`
	Total int64          `json:"total"`
}

// ReportResponse represents the finalized report of a completed job.
type ReportResponse struct {
	JobID       string               `json:"job_id"`
	CompletedAt string               `json:"completedAt,omitempty"`
	Report      *metricsModel.Report `json:"report"`
}
