package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const historyCollection = "emotion_revisions"

// MongoHistoryStore appends every entry write to a MongoDB collection.
type MongoHistoryStore struct {
	coll *mongo.Collection
}

func NewMongoHistoryStore(db *mongo.Database) *MongoHistoryStore {
	return &MongoHistoryStore{coll: db.Collection(historyCollection)}
}

// EnsureIndexes creates the (user_id, date, recorded_at) lookup index.
func (s *MongoHistoryStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}, {Key: "recorded_at", Value: 1}},
	})
	return err
}

func (s *MongoHistoryStore) Append(ctx context.Context, rev models.EmotionRevision) error {
	if _, err := s.coll.InsertOne(ctx, rev); err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	return nil
}

func (s *MongoHistoryStore) ListByDate(ctx context.Context, userID int64, date string) ([]models.EmotionRevision, error) {
	filter := bson.M{"user_id": userID, "date": date}
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: 1}})

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find revisions: %w", err)
	}
	defer cursor.Close(ctx)

	revisions := []models.EmotionRevision{}
	if err := cursor.All(ctx, &revisions); err != nil {
		return nil, fmt.Errorf("decode revisions: %w", err)
	}
	return revisions, nil
}

// NopHistoryStore is used when MongoDB is not configured.
type NopHistoryStore struct{}

func (NopHistoryStore) Append(context.Context, models.EmotionRevision) error { return nil }

func (NopHistoryStore) ListByDate(context.Context, int64, string) ([]models.EmotionRevision, error) {
	return []models.EmotionRevision{}, nil
}
