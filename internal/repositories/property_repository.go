package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/property-listing/backend/internal/filters"
	"github.com/anonto42/property-listing/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PropertyRepository defines the interface for listing data operations
type PropertyRepository interface {
	CreateProperty(ctx context.Context, property *models.Property) error
	InsertProperties(ctx context.Context, properties []models.Property) (int, error)
	FindProperties(ctx context.Context, filter filters.Filter) ([]models.Property, error)
	GetPropertyByID(ctx context.Context, id string) (*models.Property, error)
	GetPropertiesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Property, error)
	UpdateProperty(ctx context.Context, id string, set bson.M) (*models.Property, error)
	DeleteProperty(ctx context.Context, id string) error
}

// MongoPropertyRepository implements PropertyRepository for MongoDB
type MongoPropertyRepository struct {
	collection *mongo.Collection
}

// NewMongoPropertyRepository creates a new MongoPropertyRepository
func NewMongoPropertyRepository(db *mongo.Database) *MongoPropertyRepository {
	return &MongoPropertyRepository{collection: db.Collection("properties")}
}

// EnsureIndexes creates the indexes used by exact-match and range searches
func (r *MongoPropertyRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "areaSqFt", Value: 1}}},
	})
	return err
}

// CreateProperty creates a new listing in MongoDB
func (r *MongoPropertyRepository) CreateProperty(ctx context.Context, property *models.Property) error {
	property.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, property)
	return err
}

// InsertProperties bulk inserts listings, returning how many were written.
// Insertion is unordered so one bad document does not stop the rest.
func (r *MongoPropertyRepository) InsertProperties(ctx context.Context, properties []models.Property) (int, error) {
	if len(properties) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, len(properties))
	for i := range properties {
		if properties[i].ID.IsZero() {
			properties[i].ID = primitive.NewObjectID()
		}
		docs[i] = properties[i]
	}
	res, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	inserted := 0
	if res != nil {
		inserted = len(res.InsertedIDs)
	}
	return inserted, err
}

// FindProperties returns every listing matching filter. An unsatisfiable filter matches
// nothing and is not sent to the server.
func (r *MongoPropertyRepository) FindProperties(ctx context.Context, filter filters.Filter) ([]models.Property, error) {
	properties := []models.Property{}
	if filter.Unsatisfiable() {
		return properties, nil
	}

	cursor, err := r.collection.Find(ctx, filter.BSON())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

// GetPropertyByID retrieves a listing by ID from MongoDB
func (r *MongoPropertyRepository) GetPropertyByID(ctx context.Context, id string) (*models.Property, error) {
	objID, err := ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var property models.Property
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("property %w", ErrNotFound)
		}
		return nil, err
	}
	return &property, nil
}

// GetPropertiesByIDs loads the given listings keyed by id. Unknown ids are left out.
func (r *MongoPropertyRepository) GetPropertiesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Property, error) {
	result := make(map[primitive.ObjectID]models.Property)
	if len(ids) == 0 {
		return result, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var properties []models.Property
	if err = cursor.All(ctx, &properties); err != nil {
		return nil, err
	}
	for _, p := range properties {
		result[p.ID] = p
	}
	return result, nil
}

// UpdateProperty applies set to the listing and returns the updated document.
// An empty set returns the listing unchanged.
func (r *MongoPropertyRepository) UpdateProperty(ctx context.Context, id string, set bson.M) (*models.Property, error) {
	if len(set) == 0 {
		return r.GetPropertyByID(ctx, id)
	}
	objID, err := ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var updated models.Property
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("property %w", ErrNotFound)
		}
		return nil, err
	}
	return &updated, nil
}

// DeleteProperty deletes a listing by ID from MongoDB
func (r *MongoPropertyRepository) DeleteProperty(ctx context.Context, id string) error {
	objID, err := ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("property %w", ErrNotFound)
	}
	return nil
}
