package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Property is a listing stored in the "properties" collection
type Property struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	ExternalID    string             `json:"id,omitempty" bson:"id,omitempty"` // Identifier carried over from bulk imports
	Title         string             `json:"title" bson:"title"`
	Type          string             `json:"type" bson:"type"`
	Price         float64            `json:"price" bson:"price"`
	State         string             `json:"state" bson:"state"`
	City          string             `json:"city" bson:"city"`
	Location      string             `json:"location" bson:"location"`
	AreaSqFt      float64            `json:"areaSqFt" bson:"areaSqFt"`
	Bedrooms      int                `json:"bedrooms" bson:"bedrooms"`
	Bathrooms     int                `json:"bathrooms" bson:"bathrooms"`
	Amenities     []string           `json:"amenities" bson:"amenities"`
	Furnished     string             `json:"furnished" bson:"furnished"`
	AvailableFrom *time.Time         `json:"availableFrom,omitempty" bson:"availableFrom,omitempty"`
	ListedBy      string             `json:"listedBy" bson:"listedBy"`
	Tags          []string           `json:"tags" bson:"tags"`
	ColorTheme    string             `json:"colorTheme" bson:"colorTheme"`
	Rating        float64            `json:"rating" bson:"rating"`
	IsVerified    bool               `json:"isVerified" bson:"isVerified"`
	ListingType   string             `json:"listingType" bson:"listingType"`
	CreatedBy     string             `json:"createdBy,omitempty" bson:"createdBy,omitempty"` // Owner user id, set once at creation
}

// CreatePropertyRequest defines the request body for creating a listing.
// The owner is never taken from the body.
type CreatePropertyRequest struct {
	ExternalID    string   `json:"id,omitempty"`
	Title         string   `json:"title" validate:"max=200"`
	Type          string   `json:"type"`
	Price         float64  `json:"price" validate:"gte=0"`
	State         string   `json:"state"`
	City          string   `json:"city"`
	Location      string   `json:"location"`
	AreaSqFt      float64  `json:"areaSqFt" validate:"gte=0"`
	Bedrooms      int      `json:"bedrooms" validate:"gte=0"`
	Bathrooms     int      `json:"bathrooms" validate:"gte=0"`
	Amenities     []string `json:"amenities,omitempty"`
	Furnished     string   `json:"furnished"`
	AvailableFrom Date     `json:"availableFrom,omitempty"`
	ListedBy      string   `json:"listedBy"`
	Tags          []string `json:"tags,omitempty"`
	ColorTheme    string   `json:"colorTheme"`
	Rating        float64  `json:"rating"`
	IsVerified    bool     `json:"isVerified"`
	ListingType   string   `json:"listingType"`
}

// ToProperty builds the document to insert for the given owner
func (r *CreatePropertyRequest) ToProperty(ownerID string) *Property {
	return &Property{
		ExternalID:    r.ExternalID,
		Title:         r.Title,
		Type:          r.Type,
		Price:         r.Price,
		State:         r.State,
		City:          r.City,
		Location:      r.Location,
		AreaSqFt:      r.AreaSqFt,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
		Amenities:     r.Amenities,
		Furnished:     r.Furnished,
		AvailableFrom: r.AvailableFrom.Ptr(),
		ListedBy:      r.ListedBy,
		Tags:          r.Tags,
		ColorTheme:    r.ColorTheme,
		Rating:        r.Rating,
		IsVerified:    r.IsVerified,
		ListingType:   r.ListingType,
		CreatedBy:     ownerID,
	}
}

// UpdatePropertyRequest is a partial update: only non-nil fields are written
type UpdatePropertyRequest struct {
	Title         *string  `json:"title,omitempty" validate:"omitempty,max=200"`
	Type          *string  `json:"type,omitempty"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	State         *string  `json:"state,omitempty"`
	City          *string  `json:"city,omitempty"`
	Location      *string  `json:"location,omitempty"`
	AreaSqFt      *float64 `json:"areaSqFt,omitempty" validate:"omitempty,gte=0"`
	Bedrooms      *int     `json:"bedrooms,omitempty" validate:"omitempty,gte=0"`
	Bathrooms     *int     `json:"bathrooms,omitempty" validate:"omitempty,gte=0"`
	Amenities     []string `json:"amenities,omitempty"`
	Furnished     *string  `json:"furnished,omitempty"`
	AvailableFrom Date     `json:"availableFrom,omitempty"`
	ListedBy      *string  `json:"listedBy,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	ColorTheme    *string  `json:"colorTheme,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	IsVerified    *bool    `json:"isVerified,omitempty"`
	ListingType   *string  `json:"listingType,omitempty"`
}

// SetDocument returns the $set body for the supplied fields. createdBy and _id are not
// part of the request type, so an update can never reassign ownership.
func (r *UpdatePropertyRequest) SetDocument() bson.M {
	set := bson.M{}
	putString := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	putFloat := func(key string, v *float64) {
		if v != nil {
			set[key] = *v
		}
	}
	putInt := func(key string, v *int) {
		if v != nil {
			set[key] = *v
		}
	}

	putString("title", r.Title)
	putString("type", r.Type)
	putFloat("price", r.Price)
	putString("state", r.State)
	putString("city", r.City)
	putString("location", r.Location)
	putFloat("areaSqFt", r.AreaSqFt)
	putInt("bedrooms", r.Bedrooms)
	putInt("bathrooms", r.Bathrooms)
	if r.Amenities != nil {
		set["amenities"] = r.Amenities
	}
	putString("furnished", r.Furnished)
	if r.AvailableFrom.Valid {
		set["availableFrom"] = r.AvailableFrom.Time
	}
	putString("listedBy", r.ListedBy)
	if r.Tags != nil {
		set["tags"] = r.Tags
	}
	putString("colorTheme", r.ColorTheme)
	putFloat("rating", r.Rating)
	if r.IsVerified != nil {
		set["isVerified"] = *r.IsVerified
	}
	putString("listingType", r.ListingType)
	return set
}
