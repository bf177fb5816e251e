package aggregation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/salestracker/internal/domain/models"
	repo "github.com/mamadbah2/salestracker/internal/repository/mongodb"
	"github.com/mamadbah2/salestracker/pkg/currency"
)

const dateLayout = "2006-01-02"

// Report is the totals view for one selected day.
type Report struct {
	Date     string                     `json:"date"`
	Day      decimal.Decimal            `json:"day"`
	Month    decimal.Decimal            `json:"month"`
	Overall  decimal.Decimal            `json:"overall"`
	BySeller map[string]decimal.Decimal `json:"bySeller"`
	Records  []models.SoldRecord        `json:"records"`
	Summary  *models.SummaryTotal       `json:"summary"`
	Display  Display                    `json:"display"`
}

// Display holds the totals formatted in the configured currency.
type Display struct {
	Day     string `json:"day"`
	Month   string `json:"month"`
	Overall string `json:"overall"`
}

// Service computes totals over sold records and maintains them.
type Service struct {
	sales    repo.SalesRepository
	loc      *time.Location
	currency string
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires an aggregation service. Calendar days are taken in loc.
func NewService(sales repo.SalesRepository, loc *time.Location, currencyCode string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		sales:    sales,
		loc:      loc,
		currency: currencyCode,
		logger:   logger,
		now:      time.Now,
	}
}

// Location returns the calendar location used for buckets.
func (s *Service) Location() *time.Location { return s.loc }

// ParseDay parses YYYY-MM-DD in the service location. An empty value means today.
func (s *Service) ParseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return StartOfDay(s.now().In(s.loc)), nil
	}
	day, err := time.ParseInLocation(dateLayout, value, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", models.ErrValidation, value)
	}
	return day, nil
}

// LoadSold fetches every sold record.
func (s *Service) LoadSold(ctx context.Context) ([]models.SoldRecord, error) {
	records, err := s.sales.List(ctx)
	if err != nil {
		return nil, models.StoreError("list sold records", err)
	}
	return records, nil
}

// Totals builds the report for day.
func (s *Service) Totals(ctx context.Context, day time.Time) (Report, error) {
	records, err := s.LoadSold(ctx)
	if err != nil {
		return Report{}, err
	}

	var summary *models.SummaryTotal
	stored, err := s.sales.Summary(ctx)
	switch {
	case err == nil:
		summary = &stored
	case !errors.Is(err, models.ErrNotFound):
		return Report{}, models.StoreError("get summary", err)
	}

	day = day.In(s.loc)
	report := Report{
		Date:     day.Format(dateLayout),
		Day:      TotalForDay(records, day),
		Month:    TotalForMonth(records, day),
		Overall:  TotalOverall(records),
		BySeller: TotalsBySeller(records),
		Records:  RecordsForDay(records, day),
		Summary:  summary,
	}
	report.Display = Display{
		Day:     currency.Format(report.Day, s.currency),
		Month:   currency.Format(report.Month, s.currency),
		Overall: currency.Format(report.Overall, s.currency),
	}
	return report, nil
}

// DeleteSold removes a sold record and takes its price out of the summary.
// Deleting a missing record succeeds.
func (s *Service) DeleteSold(ctx context.Context, id string) error {
	deleted, err := s.sales.Delete(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return models.StoreError("delete sold record", err)
	}

	s.adjustSummary(ctx, -deleted.Price)
	s.logger.Info("sold record deleted", zap.String("id", id), zap.Float64("price", deleted.Price))
	return nil
}

// EditSold replaces the fields of a sold record. The date is kept unless the
// input carries one.
func (s *Service) EditSold(ctx context.Context, id string, in models.SoldInput) (models.SoldRecord, error) {
	code := strings.TrimSpace(in.Code)
	minerName := strings.TrimSpace(in.MinerName)
	if code == "" || minerName == "" {
		return models.SoldRecord{}, fmt.Errorf("%w: code and miner name are required", models.ErrValidation)
	}
	price, err := models.ParsePrice(in.Price)
	if err != nil {
		return models.SoldRecord{}, err
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.SoldRecord{}, models.ErrNotFound
	}
	current, err := s.sales.Get(ctx, id)
	if err != nil {
		return models.SoldRecord{}, models.StoreError("get sold record", err)
	}

	seller := strings.TrimSpace(in.Seller)
	if seller == "" {
		seller = models.UnknownSeller
	}
	date := current.Date
	if in.Date != nil {
		date = in.Date.UTC()
	}

	record := models.SoldRecord{
		ID:        oid,
		Code:      code,
		MinerName: minerName,
		Price:     price.InexactFloat64(),
		Seller:    seller,
		Date:      date,
	}
	previous, err := s.sales.Replace(ctx, record)
	if err != nil {
		return models.SoldRecord{}, models.StoreError("replace sold record", err)
	}

	s.adjustSummary(ctx, record.Price-previous.Price)
	return record, nil
}

// RebuildSummary recomputes the summary singleton from the sold records.
func (s *Service) RebuildSummary(ctx context.Context) (decimal.Decimal, error) {
	total, err := s.sales.SumPrices(ctx)
	if err != nil {
		return decimal.Zero, models.StoreError("sum sold prices", err)
	}
	if err := s.sales.SetSummary(ctx, total); err != nil {
		return decimal.Zero, models.StoreError("set summary", err)
	}

	s.logger.Info("summary rebuilt", zap.Float64("total_sales", total))
	return decimal.NewFromFloat(total), nil
}

func (s *Service) adjustSummary(ctx context.Context, delta float64) {
	if delta == 0 {
		return
	}
	if err := s.sales.IncrementSummary(ctx, delta); err != nil {
		s.logger.Warn("summary adjustment failed, rebuild pending", zap.Float64("delta", delta), zap.Error(err))
	}
}
