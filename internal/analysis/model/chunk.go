package model

import (
	"time"

	"github.com/google/uuid"

	metricsModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/model"
)

// AnalysisChunk is one fixed-size slice of a job's work item list. Chunks
// are written once at job creation and updated in place as runs complete
// them; a chunk that already holds a result is never recomputed.
// Matches the analysis_chunks table schema.
type AnalysisChunk struct {
	ID         int64     `gorm:"primaryKey;column:id;type:bigserial"                                            json:"id"`
	JobID      uuid.UUID `gorm:"column:job_id;type:uuid;not null;uniqueIndex:idx_analysis_chunks_job,priority:1" json:"job_id"`
	ChunkIndex int       `gorm:"column:chunk_index;not null;uniqueIndex:idx_analysis_chunks_job,priority:2"      json:"chunk_index"`
	ItemIDs    []int     `gorm:"column:item_ids;type:jsonb;serializer:json;not null"                            json:"item_ids"`

	// Result is the unfinalized merged report of the chunk's items.
	Result      *metricsModel.Report `gorm:"column:result;type:jsonb;serializer:json" json:"-"`
	FailedItems int                  `gorm:"column:failed_items;not null;default:0"   json:"failed_items"`
	CompletedAt *time.Time           `gorm:"column:completed_at;type:timestamptz"     json:"completedAt,omitempty"`
}

// TableName specifies the table name for GORM.
func (AnalysisChunk) TableName() string {
	return "analysis_chunks"
}

// Completed reports whether the chunk already has a stored result.
func (c *AnalysisChunk) Completed() bool {
	return c.CompletedAt != nil
}
