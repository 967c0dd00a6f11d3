// Package mongostore keeps hook values in a MongoDB collection, one document
// per account and key.
package mongostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type Store struct {
	collection *mongo.Collection
	now        func() time.Time
}

// hookDocument stores the value as its JSON text so any JSON value, null
// included, round trips unchanged.
type hookDocument struct {
	AccountID string    `bson:"account_id"`
	Key       string    `bson:"key"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func New(collection *mongo.Collection) *Store {
	return &Store{collection: collection, now: time.Now}
}

// EnsureIndexes creates the unique {account_id, key} index. Safe to call on
// every start.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongodb create hook index: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key, accountID string) (json.RawMessage, bool, error) {
	var doc hookDocument
	err := s.collection.FindOne(ctx, filter(key, accountID)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("mongodb get hook %q: %w", key, err)
	}
	return json.RawMessage(doc.Value), true, nil
}

func (s *Store) Set(ctx context.Context, key, accountID string, value json.RawMessage) error {
	doc := hookDocument{
		AccountID: accountID,
		Key:       key,
		Value:     string(value),
		UpdatedAt: s.now().UTC(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, filter(key, accountID), doc, opts); err != nil {
		return fmt.Errorf("mongodb set hook %q: %w", key, err)
	}
	return nil
}

func filter(key, accountID string) bson.M {
	return bson.M{"account_id": accountID, "key": key}
}
