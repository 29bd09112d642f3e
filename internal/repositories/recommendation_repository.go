package repositories

import (
	"context"
	"time"

	"github.com/anonto42/property-listing/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecommendationRepository defines the interface for recommendation operations.
// Recommendations are append-only.
type RecommendationRepository interface {
	CreateRecommendation(ctx context.Context, rec *models.Recommendation) error
	GetRecommendationsForUser(ctx context.Context, userID string) ([]models.Recommendation, error)
}

// MongoRecommendationRepository implements RecommendationRepository for MongoDB
type MongoRecommendationRepository struct {
	collection *mongo.Collection
}

func NewMongoRecommendationRepository(db *mongo.Database) *MongoRecommendationRepository {
	return &MongoRecommendationRepository{collection: db.Collection("recommendations")}
}

func (r *MongoRecommendationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "toUserId", Value: 1}, {Key: "recommendedAt", Value: -1}},
	})
	return err
}

func (r *MongoRecommendationRepository) CreateRecommendation(ctx context.Context, rec *models.Recommendation) error {
	rec.ID = primitive.NewObjectID()
	if rec.RecommendedAt.IsZero() {
		rec.RecommendedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, rec)
	return err
}

// GetRecommendationsForUser returns the recommendations addressed to userID, newest first
func (r *MongoRecommendationRepository) GetRecommendationsForUser(ctx context.Context, userID string) ([]models.Recommendation, error) {
	recs := []models.Recommendation{}
	opts := options.Find().SetSort(bson.D{{Key: "recommendedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"toUserId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
