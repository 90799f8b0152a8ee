package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const tokenCollection = "client_tokens"

// TokenStore is a key-value backend for the client token store. One document
// per profile and key.
type TokenStore struct {
	coll    *mongo.Collection
	profile string
}

func NewTokenStore(db *mongo.Database, profile string) *TokenStore {
	if profile == "" {
		profile = "default"
	}
	return &TokenStore{coll: db.Collection(tokenCollection), profile: profile}
}

type tokenDoc struct {
	ID        string `bson:"_id"`
	Value     string `bson:"value"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (s *TokenStore) Get(ctx context.Context, key string) (string, bool, error) {
	var doc tokenDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": s.id(key)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find token %s: %w", key, err)
	}
	return doc.Value, true, nil
}

func (s *TokenStore) Set(ctx context.Context, key, value string) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": s.id(key)},
		bson.M{"$set": bson.M{"value": value, "updated_at": time.Now().Unix()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert token %s: %w", key, err)
	}
	return nil
}

func (s *TokenStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = s.id(k)
	}
	if _, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	return nil
}

func (s *TokenStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

func (s *TokenStore) id(key string) string {
	return s.profile + ":" + key
}
