package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mamadbah2/salestracker/internal/domain/models"
)

// UserRepository defines storage for sign-up companion documents.
type UserRepository interface {
	Count(ctx context.Context) (int64, error)
	Insert(ctx context.Context, user models.UserDoc) error
}

// UserStore implements UserRepository on the users collection.
type UserStore struct {
	coll *mongo.Collection
}

// NewUserStore builds the users repository.
func NewUserStore(c *Client) *UserStore {
	return &UserStore{coll: c.Database().Collection(UsersCollection)}
}

// Count returns how many companion documents exist.
func (s *UserStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Insert writes a companion document.
func (s *UserStore) Insert(ctx context.Context, user models.UserDoc) error {
	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("insert user %s: %w", user.UID, err)
	}
	return nil
}
