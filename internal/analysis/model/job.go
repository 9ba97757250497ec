package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/config"
	metricsModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/model"
)

// JobStatus is the lifecycle state of an analysis job.
type JobStatus string

const (
	// JobStatusPending means the job has unprocessed chunks and no active run.
	JobStatusPending JobStatus = "PENDING"
	// JobStatusRunning means a run is currently processing chunks.
	JobStatusRunning JobStatus = "RUNNING"
	// JobStatusCompleted means every chunk is processed and the report is stored.
	JobStatusCompleted JobStatus = "COMPLETED"
	// JobStatusFailed means the last run aborted; unprocessed chunks remain.
	JobStatusFailed JobStatus = "FAILED"
)

// AnalysisJob represents one analysis over an area path.
// Matches the analysis_jobs table schema.
type AnalysisJob struct {
	ID        uuid.UUID  `gorm:"primaryKey;column:id;type:uuid"                                          json:"id"`
	Status    JobStatus  `gorm:"column:status;type:varchar(16);not null;index:idx_analysis_jobs_status"  json:"status"`
	AreaPath  string     `gorm:"column:area_path;type:varchar(512);not null"                             json:"area_path"`
	ItemTypes []string   `gorm:"column:item_types;type:jsonb;serializer:json"                            json:"item_types"`
	DateFrom  *time.Time `gorm:"column:date_from;type:timestamptz"                                       json:"date_from,omitempty"`
	DateTo    *time.Time `gorm:"column:date_to;type:timestamptz"                                         json:"date_to,omitempty"`

	// Settings is the snapshot pinned when the job was created. Resumed runs
	// reuse it, so one job is always computed under one configuration even
	// when the live settings file changes mid-run.
	Settings config.Settings `gorm:"column:settings;type:jsonb;serializer:json" json:"-"`

	TotalItems      int `gorm:"column:total_items;not null;default:0"      json:"total_items"`
	TotalChunks     int `gorm:"column:total_chunks;not null;default:0"     json:"total_chunks"`
	CompletedChunks int `gorm:"column:completed_chunks;not null;default:0" json:"completed_chunks"`
	FailedItems     int `gorm:"column:failed_items;not null;default:0"     json:"failed_items"`

	// Report is the finalized merged report, present only on completed jobs.
	Report *metricsModel.Report `gorm:"column:report;type:jsonb;serializer:json" json:"-"`
	Error  string               `gorm:"column:error;type:text"                   json:"error,omitempty"`

	CreatedAt   time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now();index:idx_analysis_jobs_created_at" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;type:timestamptz;not null;default:now()"                                    json:"updatedAt"`
	StartedAt   *time.Time `gorm:"column:started_at;type:timestamptz"                                                           json:"startedAt,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at;type:timestamptz"                                                         json:"completedAt,omitempty"`
}

// TableName specifies the table name for GORM.
func (AnalysisJob) TableName() string {
	return "analysis_jobs"
}

// Resumable reports whether a new run may pick the job up. Running jobs are
// already owned by a run and completed jobs have nothing left to compute.
func (j *AnalysisJob) Resumable() bool {
	return j.Status == JobStatusPending || j.Status == JobStatusFailed
}
