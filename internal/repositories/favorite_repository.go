package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/property-listing/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FavoriteRepository defines the interface for favorite operations
type FavoriteRepository interface {
	CreateFavorite(ctx context.Context, favorite *models.Favorite) error
	GetFavoritesByUser(ctx context.Context, userID string) ([]models.Favorite, error)
	GetFavoriteByID(ctx context.Context, id string) (*models.Favorite, error)
	DeleteFavorite(ctx context.Context, id string) error
}

// MongoFavoriteRepository implements FavoriteRepository for MongoDB
type MongoFavoriteRepository struct {
	collection *mongo.Collection
}

func NewMongoFavoriteRepository(db *mongo.Database) *MongoFavoriteRepository {
	return &MongoFavoriteRepository{collection: db.Collection("favorites")}
}

func (r *MongoFavoriteRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

func (r *MongoFavoriteRepository) CreateFavorite(ctx context.Context, favorite *models.Favorite) error {
	favorite.ID = primitive.NewObjectID()
	favorite.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, favorite)
	return err
}

func (r *MongoFavoriteRepository) GetFavoritesByUser(ctx context.Context, userID string) ([]models.Favorite, error) {
	favorites := []models.Favorite{}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

func (r *MongoFavoriteRepository) GetFavoriteByID(ctx context.Context, id string) (*models.Favorite, error) {
	objID, err := ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var favorite models.Favorite
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&favorite); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("favorite %w", ErrNotFound)
		}
		return nil, err
	}
	return &favorite, nil
}

func (r *MongoFavoriteRepository) DeleteFavorite(ctx context.Context, id string) error {
	objID, err := ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("favorite %w", ErrNotFound)
	}
	return nil
}
