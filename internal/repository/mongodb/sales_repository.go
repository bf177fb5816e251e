package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/salestracker/internal/domain/models"
)

// SalesRepository defines storage for sold records and the summary singleton.
type SalesRepository interface {
	List(ctx context.Context) ([]models.SoldRecord, error)
	Get(ctx context.Context, id string) (models.SoldRecord, error)
	Insert(ctx context.Context, record models.SoldRecord) (models.SoldRecord, error)
	Replace(ctx context.Context, record models.SoldRecord) (previous models.SoldRecord, err error)
	Delete(ctx context.Context, id string) (models.SoldRecord, error)
	Summary(ctx context.Context) (models.SummaryTotal, error)
	IncrementSummary(ctx context.Context, delta float64) error
	SetSummary(ctx context.Context, total float64) error
	SumPrices(ctx context.Context) (float64, error)
}

// SalesStore implements SalesRepository on the totalSales collection. The
// summary singleton lives in the same collection under the "summary" id.
type SalesStore struct {
	coll *mongo.Collection
}

// NewSalesStore builds the sold record repository.
func NewSalesStore(c *Client) *SalesStore {
	return &SalesStore{coll: c.Database().Collection(SalesCollection)}
}

func notSummary() bson.M {
	return bson.M{"_id": bson.M{"$ne": models.SummaryID}}
}

// List returns every sold record, excluding the summary document.
func (s *SalesStore) List(ctx context.Context) ([]models.SoldRecord, error) {
	cursor, err := s.coll.Find(ctx, notSummary(), options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find sold records: %w", err)
	}

	records := make([]models.SoldRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode sold records: %w", err)
	}
	return records, nil
}

// Get returns one sold record.
func (s *SalesStore) Get(ctx context.Context, id string) (models.SoldRecord, error) {
	oid, ok := objectID(id)
	if !ok {
		return models.SoldRecord{}, models.ErrNotFound
	}

	var record models.SoldRecord
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.SoldRecord{}, models.ErrNotFound
		}
		return models.SoldRecord{}, fmt.Errorf("find sold record %s: %w", id, err)
	}
	return record, nil
}

// Insert appends a sold record.
func (s *SalesStore) Insert(ctx context.Context, record models.SoldRecord) (models.SoldRecord, error) {
	record.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, record); err != nil {
		return models.SoldRecord{}, fmt.Errorf("insert sold record: %w", err)
	}
	return record, nil
}

// Replace overwrites a sold record and returns the version it replaced.
func (s *SalesStore) Replace(ctx context.Context, record models.SoldRecord) (models.SoldRecord, error) {
	opts := options.FindOneAndReplace().SetReturnDocument(options.Before)

	var previous models.SoldRecord
	if err := s.coll.FindOneAndReplace(ctx, bson.M{"_id": record.ID}, record, opts).Decode(&previous); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.SoldRecord{}, models.ErrNotFound
		}
		return models.SoldRecord{}, fmt.Errorf("replace sold record %s: %w", record.ID.Hex(), err)
	}
	return previous, nil
}

// Delete removes a sold record and returns it. ErrNotFound means nothing was
// deleted.
func (s *SalesStore) Delete(ctx context.Context, id string) (models.SoldRecord, error) {
	oid, ok := objectID(id)
	if !ok {
		return models.SoldRecord{}, models.ErrNotFound
	}

	var deleted models.SoldRecord
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&deleted); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.SoldRecord{}, models.ErrNotFound
		}
		return models.SoldRecord{}, fmt.Errorf("delete sold record %s: %w", id, err)
	}
	return deleted, nil
}

// Summary returns the summary singleton, or ErrNotFound before the first checkout.
func (s *SalesStore) Summary(ctx context.Context) (models.SummaryTotal, error) {
	var summary models.SummaryTotal
	if err := s.coll.FindOne(ctx, bson.M{"_id": models.SummaryID}).Decode(&summary); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.SummaryTotal{}, models.ErrNotFound
		}
		return models.SummaryTotal{}, fmt.Errorf("find summary: %w", err)
	}
	return summary, nil
}

// IncrementSummary atomically adds delta to totalSales, creating the summary
// document when absent.
func (s *SalesStore) IncrementSummary(ctx context.Context, delta float64) error {
	update := bson.M{"$inc": bson.M{"totalSales": delta}}
	if _, err := s.coll.UpdateOne(ctx, bson.M{"_id": models.SummaryID}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("increment summary: %w", err)
	}
	return nil
}

// SetSummary overwrites totalSales.
func (s *SalesStore) SetSummary(ctx context.Context, total float64) error {
	update := bson.M{"$set": bson.M{"totalSales": total}}
	if _, err := s.coll.UpdateOne(ctx, bson.M{"_id": models.SummaryID}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("set summary: %w", err)
	}
	return nil
}

// SumPrices totals the price of every sold record on the server.
func (s *SalesStore) SumPrices(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: notSummary()}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$price"}}},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate sold prices: %w", err)
	}

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("decode sold price aggregate: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
