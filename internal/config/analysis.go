package config

import (
	"fmt"
	"time"
)

// AnalysisConfig holds analysis run configuration.
type AnalysisConfig struct {
	// ChunkSize is the number of work items per chunk.
	ChunkSize int
	// MaxConcurrentChunks is the size of the chunk worker pool.
	MaxConcurrentChunks int
	// StallTimeout aborts a run when no chunk completes for this long.
	StallTimeout time.Duration
	// BatchBudget is the wall-clock budget of one run; when exceeded the
	// remaining chunks stay pending for a later resume.
	BatchBudget time.Duration
}

// LoadAnalysisConfigFromEnv loads analysis configuration from environment variables.
func LoadAnalysisConfigFromEnv() AnalysisConfig {
	return AnalysisConfig{
		ChunkSize:           GetEnvInt("ANALYSIS_CHUNK_SIZE", 50),
		MaxConcurrentChunks: GetEnvInt("ANALYSIS_MAX_CONCURRENT_CHUNKS", 4),
		StallTimeout:        GetEnvDuration("ANALYSIS_STALL_TIMEOUT", 10*time.Minute),
		BatchBudget:         GetEnvDuration("ANALYSIS_BATCH_BUDGET", 30*time.Minute),
	}
}

// Validate validates analysis configuration.
func (c AnalysisConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("ChunkSize must be greater than 0")
	}
	if c.MaxConcurrentChunks <= 0 {
		return fmt.Errorf("MaxConcurrentChunks must be greater than 0")
	}
	if c.StallTimeout <= 0 {
		return fmt.Errorf("StallTimeout must be greater than 0")
	}
	if c.BatchBudget <= 0 {
		return fmt.Errorf("BatchBudget must be greater than 0")
	}
	return nil
}
