package db

import (
	"context"
	"time"

	"github.com/auxy/roadside-assist/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ApiKeyCollection defines the interface for API key storage.
type ApiKeyCollection interface {
	InsertKey(ctx context.Context, key models.ApiKey) (string, error)
	FindActiveByKey(ctx context.Context, key string) (*models.ApiKey, error)
	FindKeys(ctx context.Context) ([]models.ApiKey, error)
	SetActive(ctx context.Context, id string, active bool) error
	DeleteKey(ctx context.Context, id string) error
	RecordUsage(ctx context.Context, id string) error
}

// MongoApiKeyCollection implements ApiKeyCollection for MongoDB.
type MongoApiKeyCollection struct {
	Collection *mongo.Collection
}

// InsertKey inserts a new API key and returns its id.
func (c *MongoApiKeyCollection) InsertKey(ctx context.Context, key models.ApiKey) (string, error) {
	if key.ID.IsZero() {
		key.ID = primitive.NewObjectID()
	}
	key.CreatedAt = time.Now()

	_, err := c.Collection.InsertOne(ctx, key)
	if err != nil {
		return "", err
	}
	return key.ID.Hex(), nil
}

// FindActiveByKey looks up a key by its secret. Only active keys match;
// a deactivated key behaves exactly like an unknown one.
func (c *MongoApiKeyCollection) FindActiveByKey(ctx context.Context, key string) (*models.ApiKey, error) {
	var apiKey models.ApiKey
	err := c.Collection.FindOne(ctx, bson.M{"key": key, "is_active": true}).Decode(&apiKey)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &apiKey, nil
}

// FindKeys lists every key, newest first.
func (c *MongoApiKeyCollection) FindKeys(ctx context.Context) ([]models.ApiKey, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := c.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var keys []models.ApiKey
	if err := cursor.All(ctx, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// SetActive toggles a key without touching its secret. Revocation is
// this toggle; secrets are never regenerated.
func (c *MongoApiKeyCollection) SetActive(ctx context.Context, id string, active bool) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"is_active": active}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteKey removes a key.
func (c *MongoApiKeyCollection) DeleteKey(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordUsage bumps the usage counter and stamps last_used in one atomic
// update, so concurrent calls on the same key cannot lose increments.
func (c *MongoApiKeyCollection) RecordUsage(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	_, err = c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{
			"$inc": bson.M{"usage_count": 1},
			"$set": bson.M{"last_used": time.Now()},
		},
	)
	return err
}
