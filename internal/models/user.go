package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is an account holder. The same struct is persisted by the Mongo and the Postgres
// credential stores, so it carries both bson and gorm tags.
type User struct {
	ID        string    `json:"_id" bson:"_id" gorm:"primaryKey;type:varchar(64)"`
	Email     string    `json:"email" bson:"email" gorm:"uniqueIndex;not null"` // Unique across all users
	Password  string    `json:"-" bson:"password" gorm:"not null"`            // bcrypt hash, never serialized
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// UserCompact is the public projection of a user embedded in joined responses
type UserCompact struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
