package db

import (
	"context"
	"fmt"
	"time"

	"github.com/auxy/roadside-assist/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RequestCollection defines the interface for service request storage.
// TransitionStatus is the concurrency-critical operation: the status
// check and the write happen in a single conditional update, so two
// concurrent transitions on the same document cannot both succeed.
type RequestCollection interface {
	InsertRequest(ctx context.Context, req models.ServiceRequest) (string, error)
	FindRequestByID(ctx context.Context, id string) (*models.ServiceRequest, error)
	FindRequests(ctx context.Context, clientID string, status models.RequestStatus, limit int64) ([]models.ServiceRequest, error)
	TransitionStatus(ctx context.Context, id string, from []models.RequestStatus, set bson.M) (*models.ServiceRequest, error)
	UpdateRequestFields(ctx context.Context, id string, notIn []models.RequestStatus, set bson.M) (*models.ServiceRequest, error)
}

// MongoRequestCollection implements RequestCollection for MongoDB.
type MongoRequestCollection struct {
	Collection *mongo.Collection
}

// InsertRequest inserts a new service request and returns its id.
func (c *MongoRequestCollection) InsertRequest(ctx context.Context, req models.ServiceRequest) (string, error) {
	if c.Collection == nil {
		return "", fmt.Errorf("mongo collection is nil")
	}
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	_, err := c.Collection.InsertOne(ctx, req)
	if err != nil {
		return "", err
	}
	return req.ID.Hex(), nil
}

// FindRequestByID finds a service request by its id.
func (c *MongoRequestCollection) FindRequestByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var req models.ServiceRequest
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindRequests queries a client's requests, newest first. An empty
// status matches every status.
func (c *MongoRequestCollection) FindRequests(ctx context.Context, clientID string, status models.RequestStatus, limit int64) ([]models.ServiceRequest, error) {
	filter := bson.M{"client_id": clientID}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.ServiceRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// TransitionStatus applies set to the request only if its current status
// is one of from. It returns the updated document, or ErrNotFound when
// no document matched — either the id is unknown or the status moved on,
// which the caller tells apart with a follow-up read.
func (c *MongoRequestCollection) TransitionStatus(ctx context.Context, id string, from []models.RequestStatus, set bson.M) (*models.ServiceRequest, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set["updated_at"] = time.Now()
	filter := bson.M{"_id": objectID, "status": bson.M{"$in": from}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.ServiceRequest
	err = c.Collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// UpdateRequestFields applies set to the request only while its status is
// not one of notIn. Same matched-nothing semantics as TransitionStatus.
func (c *MongoRequestCollection) UpdateRequestFields(ctx context.Context, id string, notIn []models.RequestStatus, set bson.M) (*models.ServiceRequest, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set["updated_at"] = time.Now()
	filter := bson.M{"_id": objectID}
	if len(notIn) > 0 {
		filter["status"] = bson.M{"$nin": notIn}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.ServiceRequest
	err = c.Collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}
