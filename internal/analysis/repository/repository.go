// Package repository provides data access layer for the analysis module.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	analysisModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/analysis/model"
	metricsModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/model"
)

// Repository defines the interface for analysis data access operations.
type Repository interface {
	// CreateJob persists a new job together with its chunk layout in one
	// transaction.
	CreateJob(ctx context.Context, job *analysisModel.AnalysisJob, chunks []analysisModel.AnalysisChunk) error

	// GetJob finds a job by id.
	GetJob(ctx context.Context, id uuid.UUID) (*analysisModel.AnalysisJob, error)

	// ListJobs returns jobs ordered newest first, plus the total count.
	ListJobs(ctx context.Context, limit, offset int) ([]analysisModel.AnalysisJob, int64, error)

	// MarkJobRunning transitions a job to RUNNING, keeping the original
	// started_at on resumed runs.
	MarkJobRunning(ctx context.Context, id uuid.UUID) error

	// MarkJobPending parks a job with unprocessed chunks for a later resume.
	MarkJobPending(ctx context.Context, id uuid.UUID) error

	// MarkJobFailed records an aborted run.
	MarkJobFailed(ctx context.Context, id uuid.UUID, errMsg string) error

	// CompleteJob stores the finalized report and closes the job.
	CompleteJob(ctx context.Context, id uuid.UUID, report *metricsModel.Report, failedItems int) error

	// UpdateJobProgress updates the live chunk and failure counters.
	UpdateJobProgress(ctx context.Context, id uuid.UUID, completedChunks, failedItems int) error

	// UpsertChunkResult writes a chunk result, replacing any previous result
	// for the same (job_id, chunk_index).
	UpsertChunkResult(ctx context.Context, chunk *analysisModel.AnalysisChunk) error

	// GetChunks returns all chunks of a job ordered by chunk index.
	GetChunks(ctx context.Context, jobID uuid.UUID) ([]analysisModel.AnalysisChunk, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new analysis repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// CreateJob persists a new job together with its chunk layout.
func (r *repository) CreateJob(
	ctx context.Context,
	job *analysisModel.AnalysisJob,
	chunks []analysisModel.AnalysisChunk,
) error {
	r.logger.Debugw("CreateJob called", "job_id", job.ID, "chunks", len(chunks))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(job).Error; err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}
		return tx.CreateInBatches(chunks, 100).Error
	})
	if err != nil {
		r.logger.Errorw("CreateJob database error", "job_id", job.ID, "error", err)
		return err
	}

	return nil
}

// GetJob finds a job by id.
func (r *repository) GetJob(ctx context.Context, id uuid.UUID) (*analysisModel.AnalysisJob, error) {
	var job analysisModel.AnalysisJob
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&job).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Debugw("GetJob job not found", "job_id", id)
			return nil, analysisModel.ErrJobNotFound
		}
		r.logger.Errorw("GetJob database error", "job_id", id, "error", err)
		return nil, err
	}

	return &job, nil
}

// ListJobs returns jobs ordered newest first, plus the total count.
func (r *repository) ListJobs(
	ctx context.Context,
	limit, offset int,
) ([]analysisModel.AnalysisJob, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&analysisModel.AnalysisJob{}).
		Count(&total).Error; err != nil {
		r.logger.Errorw("ListJobs count error", "error", err)
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var jobs []analysisModel.AnalysisJob
	if err := query.Find(&jobs).Error; err != nil {
		r.logger.Errorw("ListJobs database error", "error", err)
		return nil, 0, err
	}

	if jobs == nil {
		jobs = []analysisModel.AnalysisJob{}
	}

	return jobs, total, nil
}

// MarkJobRunning transitions a job to RUNNING. started_at is only set on the
// first run so resumed jobs keep their original start time.
func (r *repository) MarkJobRunning(ctx context.Context, id uuid.UUID) error {
	return r.updateJob(ctx, id, map[string]interface{}{
		"status":     analysisModel.JobStatusRunning,
		"started_at": gorm.Expr("COALESCE(started_at, ?)", time.Now()),
		"error":      "",
	})
}

// MarkJobPending parks a job with unprocessed chunks for a later resume.
func (r *repository) MarkJobPending(ctx context.Context, id uuid.UUID) error {
	return r.updateJob(ctx, id, map[string]interface{}{
		"status": analysisModel.JobStatusPending,
	})
}

// MarkJobFailed records an aborted run.
func (r *repository) MarkJobFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return r.updateJob(ctx, id, map[string]interface{}{
		"status": analysisModel.JobStatusFailed,
		"error":  errMsg,
	})
}

// CompleteJob stores the finalized report and closes the job. The report is
// marshaled by hand because map-based updates bypass the field serializer.
func (r *repository) CompleteJob(
	ctx context.Context,
	id uuid.UUID,
	report *metricsModel.Report,
	failedItems int,
) error {
	raw, err := json.Marshal(report)
	if err != nil {
		r.logger.Errorw("CompleteJob failed to marshal report", "job_id", id, "error", err)
		return err
	}

	return r.updateJob(ctx, id, map[string]interface{}{
		"status":       analysisModel.JobStatusCompleted,
		"report":       string(raw),
		"failed_items": failedItems,
		"completed_at": time.Now(),
		"error":        "",
	})
}

// UpdateJobProgress updates the live chunk and failure counters.
func (r *repository) UpdateJobProgress(
	ctx context.Context,
	id uuid.UUID,
	completedChunks, failedItems int,
) error {
	return r.updateJob(ctx, id, map[string]interface{}{
		"completed_chunks": completedChunks,
		"failed_items":     failedItems,
	})
}

// updateJob applies updates to one job, translating a missing row to
// ErrJobNotFound.
func (r *repository) updateJob(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&analysisModel.AnalysisJob{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		r.logger.Errorw("updateJob database error", "job_id", id, "error", result.Error)
		return result.Error
	}

	if result.RowsAffected == 0 {
		r.logger.Debugw("updateJob job not found", "job_id", id)
		return analysisModel.ErrJobNotFound
	}

	return nil
}

// UpsertChunkResult writes a chunk result. A second write for the same
// (job_id, chunk_index) replaces the stored result instead of adding a row,
// which keeps retried and resumed runs idempotent.
func (r *repository) UpsertChunkResult(ctx context.Context, chunk *analysisModel.AnalysisChunk) error {
	r.logger.Debugw("UpsertChunkResult called",
		"job_id", chunk.JobID,
		"chunk_index", chunk.ChunkIndex,
	)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "job_id"}, {Name: "chunk_index"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"item_ids", "result", "failed_items", "completed_at",
			}),
		}).
		Create(chunk).Error

	if err != nil {
		r.logger.Errorw("UpsertChunkResult database error",
			"job_id", chunk.JobID,
			"chunk_index", chunk.ChunkIndex,
			"error", err,
		)
		return err
	}

	return nil
}

// GetChunks returns all chunks of a job ordered by chunk index.
func (r *repository) GetChunks(ctx context.Context, jobID uuid.UUID) ([]analysisModel.AnalysisChunk, error) {
	var chunks []analysisModel.AnalysisChunk
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("chunk_index ASC").
		Find(&chunks).Error

	if err != nil {
		r.logger.Errorw("GetChunks database error", "job_id", jobID, "error", err)
		return nil, err
	}

	if chunks == nil {
		chunks = []analysisModel.AnalysisChunk{}
	}

	return chunks, nil
}
