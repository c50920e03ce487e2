package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/elmolle/eggtrack/internal/config"
	"github.com/elmolle/eggtrack/internal/domain/models"
	"github.com/elmolle/eggtrack/internal/repository/mongodb"
	"github.com/elmolle/eggtrack/internal/repository/sheets"
	"github.com/elmolle/eggtrack/internal/service/reporting"
)

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	reports      mongodb.ReportRepository
	sheetsRepo   sheets.Repository
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. sheetsRepo may be nil when
// the spreadsheet export is disabled.
func NewScheduler(cfg config.Config, reportingSvc *reporting.Service, reports mongodb.ReportRepository, sheetsRepo sheets.Repository, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to local", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
		location = time.Local
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(location)),
		reportingSvc: reportingSvc,
		reports:      reports,
		sheetsRepo:   sheetsRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the weekly report job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Reporting.CronSchedule))

	_, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.publishWeeklyReports)
	if err != nil {
		s.logger.Error("failed to schedule weekly report", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) publishWeeklyReports() {
	s.logger.Info("generating weekly reports")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	endDate := time.Now().In(s.cron.Location()).Format(models.DateLayout)
	farmID := s.cfg.Farm.DefaultFarmID

	for _, shed := range models.ShedCatalog(s.cfg.Farm.Sectors) {
		summary, err := s.reportingSvc.WindowSummary(ctx, farmID, shed.ID, endDate, s.cfg.Reporting.WindowDays)
		if err != nil {
			s.logger.Error("failed to summarize shed", zap.String("shed_id", shed.ID), zap.Error(err))
			continue
		}

		if err := s.reports.SaveShedSummary(ctx, *summary); err != nil {
			s.logger.Error("failed to store shed summary", zap.String("shed_id", shed.ID), zap.Error(err))
		}

		if s.sheetsRepo != nil {
			if err := s.sheetsRepo.AppendSummaryRow(ctx, *summary); err != nil {
				s.logger.Error("failed to export shed summary", zap.String("shed_id", shed.ID), zap.Error(err))
			}
		}

		s.logger.Info("weekly report published", zap.String("summary", reporting.FormatSummary(summary)))
	}
}
