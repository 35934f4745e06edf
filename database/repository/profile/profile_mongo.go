package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smiledesk/database"
	"smiledesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProfileRepo is the MongoDB-backed Repository.
type MongoProfileRepo struct {
	coll *mongo.Collection
}

// NewMongoProfileRepo returns a repository over the smiledesk.profiles collection.
func NewMongoProfileRepo() *MongoProfileRepo {
	coll := database.MongoClient.Database("smiledesk").Collection("profiles")
	return &MongoProfileRepo{coll: coll}
}

// Upsert writes the profile keyed by user_id, overwriting any previous record.
func (r *MongoProfileRepo) Upsert(ctx context.Context, p *models.UserProfile) error {
	p.UpdatedAt = time.Now()

	filter := bson.M{"user_id": p.UserID}
	update := bson.M{"$set": p}
	opts := options.Update().SetUpsert(true)

	if _, err := r.coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.UserID, err)
	}
	return nil
}

// GetByID fetches a profile, returning nil when none exists.
func (r *MongoProfileRepo) GetByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	return &p, nil
}
