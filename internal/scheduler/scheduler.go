package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/salestracker/internal/domain/models"
)

// ReportPublisher produces the end-of-day report.
type ReportPublisher interface {
	Today() time.Time
	PublishDailyReport(ctx context.Context, day time.Time) (models.DailyReport, error)
}

// SummaryRebuilder recomputes the running summary from sold records.
type SummaryRebuilder interface {
	RebuildSummary(ctx context.Context) (decimal.Decimal, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	reports  ReportPublisher
	summary  SummaryRebuilder
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. The schedule is a standard
// 5-field cron expression evaluated in loc.
func NewScheduler(schedule string, loc *time.Location, reports ReportPublisher, summary SummaryRebuilder, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cronLogger{logger.Sugar()})),
	)

	return &Scheduler{
		cron:     c,
		schedule: schedule,
		reports:  reports,
		summary:  summary,
		logger:   logger,
	}
}

// cronLogger routes cron's own logging, including recovered job panics, to zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Start registers the nightly job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.runNightly); err != nil {
		return fmt.Errorf("schedule nightly job %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runNightly() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	s.RunNightly(ctx)
}

// RunNightly rebuilds the summary, then publishes today's report. Each step
// logs its own failure.
func (s *Scheduler) RunNightly(ctx context.Context) {
	if s.summary != nil {
		total, err := s.summary.RebuildSummary(ctx)
		if err != nil {
			s.logger.Error("failed to rebuild summary", zap.Error(err))
		} else {
			s.logger.Info("summary rebuilt by scheduler", zap.String("total_sales", total.StringFixed(2)))
		}
	}

	if s.reports == nil {
		return
	}
	report, err := s.reports.PublishDailyReport(ctx, s.reports.Today())
	if err != nil {
		s.logger.Error("failed to publish daily report", zap.Error(err))
		return
	}
	s.logger.Info("daily report published", zap.Time("date", report.Date), zap.Int("sales_count", report.SalesCount))
}
