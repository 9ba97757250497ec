package model

import "errors"

var (
	// ErrJobNotFound indicates that the requested analysis job does not exist.
	ErrJobNotFound = errors.New("analysis job not found")
	// ErrJobNotCompleted indicates that the job's report is not available yet.
	ErrJobNotCompleted = errors.New("analysis job is not completed")
	// ErrJobNotResumable indicates that the job is running or already completed.
	ErrJobNotResumable = errors.New("analysis job is not resumable")
	// ErrJobAlreadyRunning indicates that a run for this job is already in flight.
	ErrJobAlreadyRunning = errors.New("analysis job is already running")
	// ErrInvalidAreaPath indicates a missing or blank area path.
	ErrInvalidAreaPath = errors.New("area_path is required")
	// ErrInvalidDateRange indicates an unparseable date or date_from after date_to.
	ErrInvalidDateRange = errors.New("dates must be YYYY-MM-DD and date_from must not be after date_to")
	// ErrInvalidChunkSize indicates a negative chunk size override.
	ErrInvalidChunkSize = errors.New("chunk_size must not be negative")
)
