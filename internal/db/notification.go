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

// NotificationCollection defines the interface for notification storage.
type NotificationCollection interface {
	InsertNotification(ctx context.Context, notification models.Notification) (string, error)
	FindByUser(ctx context.Context, userID string, limit int64) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// MongoNotificationCollection implements NotificationCollection for MongoDB.
type MongoNotificationCollection struct {
	Collection *mongo.Collection
}

// InsertNotification stores a notification document and returns its id.
func (c *MongoNotificationCollection) InsertNotification(ctx context.Context, notification models.Notification) (string, error) {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	notification.CreatedAt = time.Now()
	notification.Read = false

	_, err := c.Collection.InsertOne(ctx, notification)
	if err != nil {
		return "", err
	}
	return notification.ID.Hex(), nil
}

// FindByUser lists a user's notifications, newest first.
func (c *MongoNotificationCollection) FindByUser(ctx context.Context, userID string, limit int64) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := c.Collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// CountUnread returns the user's unread notification count.
func (c *MongoNotificationCollection) CountUnread(ctx context.Context, userID string) (int64, error) {
	return c.Collection.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
}

// MarkRead marks one notification as read.
func (c *MongoNotificationCollection) MarkRead(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of a user as read.
func (c *MongoNotificationCollection) MarkAllRead(ctx context.Context, userID string) error {
	_, err := c.Collection.UpdateMany(
		ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	return err
}
