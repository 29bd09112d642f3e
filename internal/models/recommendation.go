package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recommendation is a listing sent from one user to another. It is never modified.
type Recommendation struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FromUserID    string             `json:"fromUserId" bson:"fromUserId"`
	ToUserID      string             `json:"toUserId" bson:"toUserId"`
	PropertyID    primitive.ObjectID `json:"propertyId" bson:"propertyId"`
	Message       string             `json:"message" bson:"message"`
	RecommendedAt time.Time          `json:"recommendedAt" bson:"recommendedAt"`
}

type CreateRecommendationRequest struct {
	RecipientEmail string `json:"recipientEmail" validate:"required"`
	PropertyID     string `json:"propertyId" validate:"required"`
	Message        string `json:"message" validate:"max=1000"`
}

type RecommendationResponse struct {
	Message        string          `json:"message"`
	Recommendation *Recommendation `json:"recommendation"`
}

// RecommendationView joins the sender and the listing for the recipient's inbox
type RecommendationView struct {
	ID            primitive.ObjectID `json:"_id"`
	From          *UserCompact       `json:"fromUserId"`
	ToUserID      string             `json:"toUserId"`
	Property      *Property          `json:"propertyId"`
	Message       string             `json:"message"`
	RecommendedAt time.Time          `json:"recommendedAt"`
}
