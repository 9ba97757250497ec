package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	analysisModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/analysis/model"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/engine"
	metricsModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/model"
	trackerModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/tracker/model"
)

var errStallTimeout = errors.New("no chunk completed within stall timeout")

type chunkResult struct {
	index       int
	failedItems int
	err         error
}

// run executes one batch over the job's unprocessed chunks. Chunks are fed
// to a fixed worker pool; each completed chunk is persisted immediately, so
// an aborted run never loses finished work. The run ends in one of three
// states: COMPLETED when every chunk holds a result, PENDING when the batch
// budget ran out first, FAILED on a stall or a chunk error.
func (s *service) run(id uuid.UUID) {
	logger := s.logger.With("job_id", id)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.repo.MarkJobRunning(ctx, id); err != nil {
		logger.Errorw("failed to mark job running", "error", err)
		return
	}

	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		s.fail(id, logger, err)
		return
	}

	eng, err := s.newEngine(job.Settings)
	if err != nil {
		s.fail(id, logger, err)
		return
	}

	chunks, err := s.repo.GetChunks(ctx, id)
	if err != nil {
		s.fail(id, logger, err)
		return
	}

	completed := 0
	failedItems := 0
	pending := make([]analysisModel.AnalysisChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.Completed() {
			completed++
			failedItems += chunk.FailedItems
			continue
		}
		pending = append(pending, chunk)
	}

	logger.Infow("analysis run started",
		"total_chunks", len(chunks),
		"pending_chunks", len(pending),
	)

	deadline := time.Now().Add(s.cfg.BatchBudget)
	tasks := make(chan analysisModel.AnalysisChunk)
	results := make(chan chunkResult)

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.MaxConcurrentChunks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range tasks {
				results <- s.processChunk(ctx, eng, chunk)
			}
		}()
	}

	go func() {
		defer close(tasks)
		for _, chunk := range pending {
			if time.Now().After(deadline) {
				logger.Infow("batch budget exhausted, leaving remaining chunks for a resume")
				return
			}
			select {
			case tasks <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	stall := time.NewTimer(s.cfg.StallTimeout)
	defer stall.Stop()
	stallC := stall.C

	var runErr error
loop:
	for {
		select {
		case res, ok := <-results:
			if !ok {
				break loop
			}
			if !stall.Stop() {
				select {
				case <-stall.C:
				default:
				}
			}
			stall.Reset(s.cfg.StallTimeout)

			if res.err != nil {
				if runErr == nil && ctx.Err() == nil {
					runErr = res.err
					cancel()
				}
				continue
			}

			completed++
			failedItems += res.failedItems
			if err := s.repo.UpdateJobProgress(context.Background(), id, completed, failedItems); err != nil {
				logger.Warnw("failed to update job progress", "error", err)
			}
			logger.Debugw("chunk completed",
				"chunk_index", res.index,
				"completed_chunks", completed,
				"total_chunks", len(chunks),
			)

		case <-stallC:
			runErr = errStallTimeout
			cancel()
			// Disable this case and keep draining until the workers exit.
			stallC = nil
		}
	}

	if runErr != nil {
		s.fail(id, logger, runErr)
		return
	}

	if completed < len(chunks) {
		if err := s.repo.MarkJobPending(context.Background(), id); err != nil {
			logger.Errorw("failed to park job", "error", err)
			return
		}
		logger.Infow("analysis run parked",
			"completed_chunks", completed,
			"total_chunks", len(chunks),
		)
		return
	}

	s.complete(id, logger)
}

// processChunk analyzes every work item of one chunk and persists the
// chunk's unfinalized merged report. Items that cannot be read after
// retries are skipped and counted, never silently dropped.
func (s *service) processChunk(
	ctx context.Context,
	eng *engine.Engine,
	chunk analysisModel.AnalysisChunk,
) chunkResult {
	logger := s.logger.With("job_id", chunk.JobID, "chunk_index", chunk.ChunkIndex)

	items, err := s.tracker.WorkItemsBatch(ctx, chunk.ItemIDs, nil)
	if err != nil {
		return chunkResult{index: chunk.ChunkIndex, err: err}
	}

	byID := make(map[int]trackerModel.WorkItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	failed := 0
	reports := make([]*metricsModel.Report, 0, len(chunk.ItemIDs))
	for _, itemID := range chunk.ItemIDs {
		item, ok := byID[itemID]
		if !ok {
			// errorPolicy omit drops deleted and inaccessible items from
			// the snapshot response.
			failed++
			logger.Warnw("work item missing from batch snapshot", "work_item_id", itemID)
			continue
		}

		revisions, err := s.tracker.Revisions(ctx, itemID)
		if err != nil {
			if ctx.Err() != nil {
				return chunkResult{index: chunk.ChunkIndex, err: ctx.Err()}
			}
			failed++
			logger.Warnw("skipping work item after revision fetch failure",
				"work_item_id", itemID,
				"error", err,
			)
			continue
		}

		report := eng.ProcessItem(trackerModel.ToItemHistory(item, revisions))

		if len(item.Relations) > 0 {
			activity, err := s.tracker.PullRequestComments(ctx, item.Relations)
			if err != nil {
				if ctx.Err() != nil {
					return chunkResult{index: chunk.ChunkIndex, err: ctx.Err()}
				}
				logger.Warnw("skipping pull request activity",
					"work_item_id", itemID,
					"error", err,
				)
			}
			for author, a := range activity {
				report.AddPRActivity(author, a.PRCount, a.CommentCount)
			}
		}

		reports = append(reports, report)
	}

	now := time.Now()
	chunk.Result = engine.MergeReports(reports...)
	chunk.FailedItems = failed
	chunk.CompletedAt = &now

	if err := s.repo.UpsertChunkResult(ctx, &chunk); err != nil {
		return chunkResult{index: chunk.ChunkIndex, err: err}
	}

	return chunkResult{index: chunk.ChunkIndex, failedItems: failed}
}

// complete merges all chunk results in index order, finalizes the derived
// statistics and closes the job.
func (s *service) complete(id uuid.UUID, logger *zap.SugaredLogger) {
	ctx := context.Background()

	chunks, err := s.repo.GetChunks(ctx, id)
	if err != nil {
		s.fail(id, logger, err)
		return
	}

	failedItems := 0
	reports := make([]*metricsModel.Report, 0, len(chunks))
	for _, chunk := range chunks {
		failedItems += chunk.FailedItems
		reports = append(reports, chunk.Result)
	}

	merged := engine.MergeReports(reports...)
	engine.Finalize(merged)

	if err := s.repo.CompleteJob(ctx, id, merged, failedItems); err != nil {
		s.fail(id, logger, err)
		return
	}

	logger.Infow("analysis completed",
		"total_chunks", len(chunks),
		"failed_items", failedItems,
	)
}

// fail records an aborted run. The job keeps its completed chunks and stays
// resumable.
func (s *service) fail(id uuid.UUID, logger *zap.SugaredLogger, cause error) {
	logger.Errorw("analysis run failed", "error", cause)
	if err := s.repo.MarkJobFailed(context.Background(), id, cause.Error()); err != nil {
		logger.Errorw("failed to record job failure", "error", err)
	}
}
