// Package service provides business logic layer for the analysis module.
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	analysisModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/analysis/model"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/analysis/repository"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/config"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/calendar"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/engine"
	trackerModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/tracker/model"
)

// TrackerClient is the tracker API surface the analysis service consumes.
type TrackerClient interface {
	QueryWorkItemIDs(ctx context.Context, wiql string) ([]int, error)
	WorkItemsBatch(ctx context.Context, ids []int, fields []string) ([]trackerModel.WorkItem, error)
	Revisions(ctx context.Context, id int) ([]trackerModel.Revision, error)
	PullRequestComments(ctx context.Context, relations []trackerModel.Relation) (map[string]trackerModel.PRActivity, error)
}

// Service defines the interface for analysis business logic operations.
type Service interface {
	// Start creates a new job from the request and launches its first run in
	// the background.
	Start(ctx context.Context, req *analysisModel.StartAnalysisRequest) (*analysisModel.JobResponse, error)

	// Resume launches a run that computes only the chunks the previous runs
	// left unprocessed.
	Resume(ctx context.Context, id uuid.UUID) (*analysisModel.JobResponse, error)

	// Get returns one job with its progress counters.
	Get(ctx context.Context, id uuid.UUID) (*analysisModel.JobResponse, error)

	// List returns jobs ordered newest first.
	List(ctx context.Context, limit, offset int) (*analysisModel.JobListResponse, error)

	// Report returns the finalized report of a completed job.
	Report(ctx context.Context, id uuid.UUID) (*analysisModel.ReportResponse, error)
}

type service struct {
	repo     repository.Repository
	tracker  TrackerClient
	settings *config.SettingsStore
	cfg      config.AnalysisConfig
	logger   *zap.SugaredLogger

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

// New creates a new analysis service instance.
func New(
	repo repository.Repository,
	tracker TrackerClient,
	settings *config.SettingsStore,
	cfg config.AnalysisConfig,
	logger *zap.SugaredLogger,
) Service {
	return &service{
		repo:     repo,
		tracker:  tracker,
		settings: settings,
		cfg:      cfg,
		logger:   logger,
		inFlight: make(map[uuid.UUID]struct{}),
	}
}

// Start creates a new job from the request and launches its first run.
func (s *service) Start(
	ctx context.Context,
	req *analysisModel.StartAnalysisRequest,
) (*analysisModel.JobResponse, error) {
	areaPath := strings.TrimSpace(req.AreaPath)
	if areaPath == "" {
		return nil, analysisModel.ErrInvalidAreaPath
	}
	if req.ChunkSize < 0 {
		return nil, analysisModel.ErrInvalidChunkSize
	}

	from, to, err := parseWindow(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}

	itemTypes := normalizeTypes(req.ItemTypes)
	chunkSize := req.ChunkSize
	if chunkSize == 0 {
		chunkSize = s.cfg.ChunkSize
	}

	ids, err := s.tracker.QueryWorkItemIDs(ctx, buildWIQL(areaPath, itemTypes, from, to))
	if err != nil {
		s.logger.Errorw("work item query failed", "area_path", areaPath, "error", err)
		return nil, err
	}

	job := &analysisModel.AnalysisJob{
		ID:        uuid.New(),
		Status:    analysisModel.JobStatusPending,
		AreaPath:  areaPath,
		ItemTypes: itemTypes,
		DateFrom:  from,
		DateTo:    to,
		// The settings snapshot is pinned here; later reloads of the live
		// settings file never affect this job.
		Settings:   s.settings.Snapshot(),
		TotalItems: len(ids),
	}
	chunks := partitionChunks(job.ID, ids, chunkSize)
	job.TotalChunks = len(chunks)

	if err := s.repo.CreateJob(ctx, job, chunks); err != nil {
		return nil, err
	}

	s.logger.Infow("analysis job created",
		"job_id", job.ID,
		"area_path", areaPath,
		"total_items", job.TotalItems,
		"total_chunks", job.TotalChunks,
	)

	if err := s.launch(job.ID); err != nil {
		return nil, err
	}

	return jobResponse(job), nil
}

// Resume launches a run for a pending or failed job. Chunks that already
// hold a result are not recomputed.
func (s *service) Resume(ctx context.Context, id uuid.UUID) (*analysisModel.JobResponse, error) {
	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	if !job.Resumable() {
		return nil, analysisModel.ErrJobNotResumable
	}

	if err := s.launch(job.ID); err != nil {
		return nil, err
	}

	s.logger.Infow("analysis job resumed",
		"job_id", job.ID,
		"completed_chunks", job.CompletedChunks,
		"total_chunks", job.TotalChunks,
	)

	return jobResponse(job), nil
}

// Get returns one job with its progress counters.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*analysisModel.JobResponse, error) {
	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	return jobResponse(job), nil
}

// List returns jobs ordered newest first.
func (s *service) List(ctx context.Context, limit, offset int) (*analysisModel.JobListResponse, error) {
	jobs, total, err := s.repo.ListJobs(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*analysisModel.JobResponse, 0, len(jobs))
	for i := range jobs {
		responses = append(responses, jobResponse(&jobs[i]))
	}

	return &analysisModel.JobListResponse{Jobs: responses, Total: total}, nil
}

// Report returns the finalized report of a completed job.
func (s *service) Report(ctx context.Context, id uuid.UUID) (*analysisModel.ReportResponse, error) {
	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	if job.Status != analysisModel.JobStatusCompleted || job.Report == nil {
		return nil, analysisModel.ErrJobNotCompleted
	}

	resp := &analysisModel.ReportResponse{
		JobID:  job.ID.String(),
		Report: job.Report,
	}
	if job.CompletedAt != nil {
		resp.CompletedAt = job.CompletedAt.Format(time.RFC3339)
	}
	return resp, nil
}

// launch registers the job as in flight and starts its run goroutine. A job
// already owned by a run cannot be launched twice.
func (s *service) launch(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inFlight[id]; ok {
		return analysisModel.ErrJobAlreadyRunning
	}
	s.inFlight[id] = struct{}{}

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, id)
			s.mu.Unlock()
		}()
		s.run(id)
	}()

	return nil
}

// newEngine builds the aggregation engine from a job's pinned settings.
func (s *service) newEngine(settings config.Settings) (*engine.Engine, error) {
	cal, err := calendar.New(settings.Calendar)
	if err != nil {
		return nil, err
	}
	return engine.New(cal, settings.StateMap(), s.logger), nil
}

// parseWindow parses the optional analysis window bounds.
func parseWindow(fromRaw, toRaw string) (*time.Time, *time.Time, error) {
	var from, to *time.Time

	if fromRaw != "" {
		t, err := time.Parse(analysisModel.DateLayout, fromRaw)
		if err != nil {
			return nil, nil, analysisModel.ErrInvalidDateRange
		}
		from = &t
	}
	if toRaw != "" {
		t, err := time.Parse(analysisModel.DateLayout, toRaw)
		if err != nil {
			return nil, nil, analysisModel.ErrInvalidDateRange
		}
		to = &t
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, analysisModel.ErrInvalidDateRange
	}

	return from, to, nil
}

// normalizeTypes trims the requested work item types, dropping blanks.
func normalizeTypes(types []string) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// buildWIQL builds the flat work item query. Results are ordered by id so a
// resumed job sees the same chunk layout the original run persisted.
func buildWIQL(areaPath string, itemTypes []string, from, to *time.Time) string {
	var b strings.Builder
	b.WriteString("SELECT [System.Id] FROM WorkItems WHERE [System.AreaPath] UNDER '")
	b.WriteString(escapeWIQL(areaPath))
	b.WriteString("'")

	if len(itemTypes) > 0 {
		quoted := make([]string, 0, len(itemTypes))
		for _, t := range itemTypes {
			quoted = append(quoted, "'"+escapeWIQL(t)+"'")
		}
		b.WriteString(" AND [System.WorkItemType] IN (")
		b.WriteString(strings.Join(quoted, ", "))
		b.WriteString(")")
	}
	if from != nil {
		b.WriteString(" AND [System.ChangedDate] >= '")
		b.WriteString(from.Format(analysisModel.DateLayout))
		b.WriteString("'")
	}
	if to != nil {
		b.WriteString(" AND [System.ChangedDate] <= '")
		b.WriteString(to.Format(analysisModel.DateLayout))
		b.WriteString("'")
	}

	b.WriteString(" ORDER BY [System.Id]")
	return b.String()
}

func escapeWIQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// partitionChunks slices the ordered id list into fixed-size chunks.
func partitionChunks(jobID uuid.UUID, ids []int, size int) []analysisModel.AnalysisChunk {
	if len(ids) == 0 {
		return nil
	}

	chunks := make([]analysisModel.AnalysisChunk, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, analysisModel.AnalysisChunk{
			JobID:      jobID,
			ChunkIndex: len(chunks),
			ItemIDs:    ids[start:end],
		})
	}
	return chunks
}

// jobResponse converts a job to its API representation.
func jobResponse(job *analysisModel.AnalysisJob) *analysisModel.JobResponse {
	resp := &analysisModel.JobResponse{
		ID:              job.ID.String(),
		Status:          string(job.Status),
		AreaPath:        job.AreaPath,
		ItemTypes:       job.ItemTypes,
		TotalItems:      job.TotalItems,
		TotalChunks:     job.TotalChunks,
		CompletedChunks: job.CompletedChunks,
		FailedItems:     job.FailedItems,
		Error:           job.Error,
		CreatedAt:       job.CreatedAt.Format(time.RFC3339),
	}

	if job.DateFrom != nil {
		resp.DateFrom = job.DateFrom.Format(analysisModel.DateLayout)
	}
	if job.DateTo != nil {
		resp.DateTo = job.DateTo.Format(analysisModel.DateLayout)
	}
	if job.StartedAt != nil {
		resp.StartedAt = job.StartedAt.Format(time.RFC3339)
	}
	if job.CompletedAt != nil {
		resp.CompletedAt = job.CompletedAt.Format(time.RFC3339)
	}

	return resp
}
