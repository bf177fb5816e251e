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

// LiveRepository defines storage for in-progress sale entries.
type LiveRepository interface {
	List(ctx context.Context) ([]models.LiveEntry, error)
	Get(ctx context.Context, id string) (models.LiveEntry, error)
	Insert(ctx context.Context, entry models.LiveEntry) (models.LiveEntry, error)
	Replace(ctx context.Context, entry models.LiveEntry) (models.LiveEntry, error)
	MarkCheckedOut(ctx context.Context, id string) (models.LiveEntry, error)
	UnmarkCheckedOut(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

// LiveStore implements LiveRepository on the liveData collection.
type LiveStore struct {
	coll *mongo.Collection
}

// NewLiveStore builds the live entry repository.
func NewLiveStore(c *Client) *LiveStore {
	return &LiveStore{coll: c.Database().Collection(LiveCollection)}
}

// List returns every live entry.
func (s *LiveStore) List(ctx context.Context) ([]models.LiveEntry, error) {
	cursor, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find live entries: %w", err)
	}

	entries := make([]models.LiveEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode live entries: %w", err)
	}
	return entries, nil
}

// Get returns one live entry.
func (s *LiveStore) Get(ctx context.Context, id string) (models.LiveEntry, error) {
	oid, ok := objectID(id)
	if !ok {
		return models.LiveEntry{}, models.ErrNotFound
	}

	var entry models.LiveEntry
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&entry); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.LiveEntry{}, models.ErrNotFound
		}
		return models.LiveEntry{}, fmt.Errorf("find live entry %s: %w", id, err)
	}
	return entry, nil
}

// Insert creates a live entry and returns it with its generated id.
func (s *LiveStore) Insert(ctx context.Context, entry models.LiveEntry) (models.LiveEntry, error) {
	entry.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, entry); err != nil {
		return models.LiveEntry{}, fmt.Errorf("insert live entry: %w", err)
	}
	return entry, nil
}

// Replace overwrites the code, miner name, price and seller of an entry that
// is not checked out. It returns ErrAlreadyCheckedOut when the entry exists but
// was checked out.
func (s *LiveStore) Replace(ctx context.Context, entry models.LiveEntry) (models.LiveEntry, error) {
	update := bson.M{"$set": bson.M{
		"code":      entry.Code,
		"minerName": entry.MinerName,
		"price":     entry.Price,
		"seller":    entry.Seller,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.LiveEntry
	filter := bson.M{"_id": entry.ID, "checkedOut": false}
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.LiveEntry{}, fmt.Errorf("update live entry %s: %w", entry.ID.Hex(), err)
	}

	if _, err := s.Get(ctx, entry.ID.Hex()); err != nil {
		return models.LiveEntry{}, err
	}
	return models.LiveEntry{}, models.ErrAlreadyCheckedOut
}

// MarkCheckedOut flips checkedOut from false to true. It returns
// ErrAlreadyCheckedOut when the entry exists but was checked out before.
func (s *LiveStore) MarkCheckedOut(ctx context.Context, id string) (models.LiveEntry, error) {
	oid, ok := objectID(id)
	if !ok {
		return models.LiveEntry{}, models.ErrNotFound
	}

	filter := bson.M{"_id": oid, "checkedOut": false}
	update := bson.M{"$set": bson.M{"checkedOut": true}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var entry models.LiveEntry
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&entry)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.LiveEntry{}, fmt.Errorf("check out live entry %s: %w", id, err)
	}

	if _, err := s.Get(ctx, id); err != nil {
		return models.LiveEntry{}, err
	}
	return models.LiveEntry{}, models.ErrAlreadyCheckedOut
}

// UnmarkCheckedOut flips checkedOut back to false. It undoes a checkout whose
// sold record could not be written.
func (s *LiveStore) UnmarkCheckedOut(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return models.ErrNotFound
	}

	filter := bson.M{"_id": oid, "checkedOut": true}
	update := bson.M{"$set": bson.M{"checkedOut": false}}
	if _, err := s.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("revert checkout of live entry %s: %w", id, err)
	}
	return nil
}

// Delete removes an entry. Deleting a missing entry succeeds.
func (s *LiveStore) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete live entry %s: %w", id, err)
	}
	return nil
}

// DeleteAll removes every live entry in one batch.
func (s *LiveStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("delete live entries: %w", err)
	}
	return res.DeletedCount, nil
}
