package sheets

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/salestracker/internal/config"
	"github.com/mamadbah2/salestracker/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Exporter appends daily reports to a spreadsheet.
type Exporter interface {
	AppendDailyReport(ctx context.Context, report models.DailyReport) error
}

// ReportSheet implements Exporter using the official Google Sheets API.
type ReportSheet struct {
	service       *sheetsapi.Service
	spreadsheetID string
	sheetRange    string
	logger        *zap.Logger
}

// NewReportSheet builds a Google Sheets backed exporter.
func NewReportSheet(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*ReportSheet, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReportRange == "" {
		return nil, fmt.Errorf("report range must not be empty")
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &ReportSheet{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetRange:    cfg.ReportRange,
		logger:        logger,
	}, nil
}

// AppendDailyReport writes one row: date, sales count, day total, month to
// date, per-seller breakdown.
func (r *ReportSheet) AppendDailyReport(ctx context.Context, report models.DailyReport) error {
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{ReportRow(report)}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, r.sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", r.sheetRange, err)
	}

	r.logger.Debug("daily report appended to sheet", zap.String("range", r.sheetRange), zap.Time("date", report.Date))
	return nil
}

// ReportRow flattens a report into spreadsheet cells.
func ReportRow(report models.DailyReport) []interface{} {
	sellers := make([]string, 0, len(report.BySeller))
	for seller := range report.BySeller {
		sellers = append(sellers, seller)
	}
	sort.Strings(sellers)

	parts := make([]string, 0, len(sellers))
	for _, seller := range sellers {
		parts = append(parts, fmt.Sprintf("%s=%.2f", seller, report.BySeller[seller]))
	}

	return []interface{}{
		report.Date.Format(dateLayout),
		report.SalesCount,
		report.SalesAmount,
		report.MonthToDate,
		strings.Join(parts, "; "),
	}
}
