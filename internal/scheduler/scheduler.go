// Package scheduler provides cron-driven periodic analyses.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	analysisModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/analysis/model"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/analysis/service"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/config"
)

// Scheduler starts a configured analysis on a cron schedule. A tick that
// fires while the previous scheduled analysis is still running is skipped.
type Scheduler struct {
	cron    *cron.Cron
	service service.Service
	cfg     config.SchedulerConfig
	logger  *zap.SugaredLogger

	// lastJob is the job started by the previous tick. Ticks run on the
	// cron goroutine one at a time, so no lock is needed.
	lastJob uuid.UUID
}

// New creates a scheduler. The returned scheduler is inert until Start.
func New(svc service.Service, cfg config.SchedulerConfig, logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		service: svc,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start registers the cron entry and begins ticking. A disabled
// configuration (empty cron spec) is a no-op.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled() {
		s.logger.Infow("scheduler disabled, no cron spec configured")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.CronSpec, s.tick); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Infow("scheduler started",
		"cron", s.cfg.CronSpec,
		"area_path", s.cfg.AreaPath,
		"window_days", s.cfg.WindowDays,
	)
	return nil
}

// Stop halts the cron loop and waits for a running tick callback to return.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// tick starts one scheduled analysis over the configured lookback window,
// unless the previous tick's analysis is still running.
func (s *Scheduler) tick() {
	ctx := context.Background()

	if s.lastJob != uuid.Nil {
		prev, err := s.service.Get(ctx, s.lastJob)
		if err == nil && prev.Status == string(analysisModel.JobStatusRunning) {
			s.logger.Infow("skipping scheduled analysis, previous run still in flight",
				"job_id", s.lastJob,
			)
			return
		}
	}

	now := time.Now().UTC()
	req := &analysisModel.StartAnalysisRequest{
		AreaPath:  s.cfg.AreaPath,
		ItemTypes: s.cfg.ItemTypes,
		DateFrom:  now.AddDate(0, 0, -s.cfg.WindowDays).Format(analysisModel.DateLayout),
		DateTo:    now.Format(analysisModel.DateLayout),
	}

	job, err := s.service.Start(ctx, req)
	if err != nil {
		s.logger.Errorw("scheduled analysis failed to start", "error", err)
		return
	}

	if id, parseErr := uuid.Parse(job.ID); parseErr == nil {
		s.lastJob = id
	}

	s.logger.Infow("scheduled analysis started",
		"job_id", job.ID,
		"area_path", job.AreaPath,
		"total_items", job.TotalItems,
	)
}
