package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/salestracker/internal/domain/models"
)

// ReportRepository defines storage for daily reports.
type ReportRepository interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// ReportStore implements ReportRepository on the dailyReports collection.
type ReportStore struct {
	coll *mongo.Collection
}

// NewReportStore builds the daily report repository.
func NewReportStore(c *Client) *ReportStore {
	return &ReportStore{coll: c.Database().Collection(ReportsCollection)}
}

// SaveDailyReport upserts the report for its date so reruns replace it.
func (s *ReportStore) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"date": report.Date}, report, opts); err != nil {
		return fmt.Errorf("failed to save daily report: %w", err)
	}
	return nil
}
