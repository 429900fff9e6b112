package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

// ConnectMongo connects to MongoDB at the given URI and verifies the
// connection with a ping.
func ConnectMongo(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Collections bundles the per-entity collections of one database.
type Collections struct {
	Requests      RequestCollection
	Users         UserCollection
	ApiKeys       ApiKeyCollection
	Notifications NotificationCollection
}

// NewCollections wires the Mongo-backed collection implementations.
func NewCollections(database *mongo.Database) *Collections {
	return &Collections{
		Requests:      &MongoRequestCollection{Collection: database.Collection("serviceRequests")},
		Users:         &MongoUserCollection{Collection: database.Collection("users")},
		ApiKeys:       &MongoApiKeyCollection{Collection: database.Collection("apiKeys")},
		Notifications: &MongoNotificationCollection{Collection: database.Collection("notifications")},
	}
}
