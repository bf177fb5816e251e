package reporting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/salestracker/internal/domain/models"
	mongorepo "github.com/mamadbah2/salestracker/internal/repository/mongodb"
	"github.com/mamadbah2/salestracker/internal/repository/sheets"
	"github.com/mamadbah2/salestracker/internal/service/aggregation"
)

// Service builds and publishes the end-of-day sales report.
type Service struct {
	sales    mongorepo.SalesRepository
	reports  mongorepo.ReportRepository
	exporter sheets.Exporter
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new reporting service instance. exporter may be nil when
// no spreadsheet is configured.
func NewService(sales mongorepo.SalesRepository, reports mongorepo.ReportRepository, exporter sheets.Exporter, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		sales:    sales,
		reports:  reports,
		exporter: exporter,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// BuildDailyReport aggregates the sold records for day's calendar day.
func (s *Service) BuildDailyReport(ctx context.Context, day time.Time) (models.DailyReport, error) {
	records, err := s.sales.List(ctx)
	if err != nil {
		return models.DailyReport{}, models.StoreError("list sold records", err)
	}

	day = aggregation.StartOfDay(day.In(s.loc))
	todays := aggregation.RecordsForDay(records, day)

	bySeller := make(map[string]float64)
	for seller, total := range aggregation.TotalsBySeller(todays) {
		bySeller[seller] = total.InexactFloat64()
	}

	return models.DailyReport{
		Date:        day,
		SalesCount:  len(todays),
		SalesAmount: aggregation.TotalOverall(todays).InexactFloat64(),
		MonthToDate: aggregation.TotalForMonth(records, day).InexactFloat64(),
		Overall:     aggregation.TotalOverall(records).InexactFloat64(),
		BySeller:    bySeller,
		CreatedAt:   s.now().UTC(),
	}, nil
}

// PublishDailyReport builds the report for day, stores it and, when an
// exporter is configured, appends it to the spreadsheet. A failed export is
// returned after the report has been stored.
func (s *Service) PublishDailyReport(ctx context.Context, day time.Time) (models.DailyReport, error) {
	report, err := s.BuildDailyReport(ctx, day)
	if err != nil {
		return models.DailyReport{}, err
	}

	if err := s.reports.SaveDailyReport(ctx, report); err != nil {
		return report, models.StoreError("save daily report", err)
	}

	s.logger.Info("daily report saved",
		zap.Time("date", report.Date),
		zap.Int("sales_count", report.SalesCount),
		zap.Float64("sales_amount", report.SalesAmount),
	)

	if s.exporter == nil {
		return report, nil
	}
	if err := s.exporter.AppendDailyReport(ctx, report); err != nil {
		return report, fmt.Errorf("export daily report: %w", err)
	}
	return report, nil
}

// Today returns the current calendar day in the report location.
func (s *Service) Today() time.Time {
	return aggregation.StartOfDay(s.now().In(s.loc))
}
