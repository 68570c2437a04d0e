package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
)

const subscriptionsCollection = "subscriptions"

// MongoStore is the MongoDB-backed SubscriptionStore for deployments that
// already run Mongo instead of Postgres.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a Mongo subscription store. Panics on a nil
// database to fail fast during initialization.
func NewMongoStore(db *mongo.Database) *MongoStore {
	if db == nil {
		panic("storage: mongo database is required")
	}
	return &MongoStore{collection: db.Collection(subscriptionsCollection)}
}

type mongoSubscription struct {
	ID           string                   `bson:"_id"`
	Subscription marketplace.Subscription `bson:"subscription"`
}

func (s *MongoStore) Get(ctx context.Context, subscriptionID string) (*marketplace.Subscription, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("%w: subscription ID is required", ErrInvalidSubscription)
	}

	var doc mongoSubscription
	err := s.collection.FindOne(ctx, bson.M{"_id": subscriptionID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, errors.Join(ErrFailedToQuery, err)
	}
	return &doc.Subscription, nil
}

func (s *MongoStore) Save(ctx context.Context, sub *marketplace.Subscription) error {
	if sub == nil || sub.ID == "" {
		return fmt.Errorf("%w: subscription with ID is required", ErrInvalidSubscription)
	}

	doc := mongoSubscription{ID: sub.ID, Subscription: *sub}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": sub.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Join(ErrFailedToSave, err)
	}
	return nil
}
