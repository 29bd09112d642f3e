package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorite links a user to a listing. Duplicates are allowed.
type Favorite struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID     string             `json:"userId" bson:"userId"`
	PropertyID primitive.ObjectID `json:"propertyId" bson:"propertyId"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

type CreateFavoriteRequest struct {
	PropertyID string `json:"propertyId" validate:"required"`
}

// FavoriteView is a favorite with its listing joined in place of the id.
// Property is nil when the listing no longer exists.
type FavoriteView struct {
	ID        primitive.ObjectID `json:"_id"`
	UserID    string             `json:"userId"`
	Property  *Property          `json:"propertyId"`
	CreatedAt time.Time          `json:"createdAt"`
}
