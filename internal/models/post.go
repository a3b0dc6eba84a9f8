package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a shared track or thought stored in MongoDB
type Post struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        string             `json:"user_id" bson:"user_id"` // Author's user ID as a string
	Content       string             `json:"content" bson:"content"`
	TrackURL      string             `json:"track_url,omitempty" bson:"track_url,omitempty"`
	TrackTitle    string             `json:"track_title,omitempty" bson:"track_title,omitempty"`
	ArtworkURL    string             `json:"artwork_url,omitempty" bson:"artwork_url,omitempty"`
	LikesCount    int                `json:"likes_count" bson:"likes_count"`
	CommentsCount int                `json:"comments_count" bson:"comments_count"`
	RepostsCount  int                `json:"reposts_count" bson:"reposts_count"`
	PlaysCount    int                `json:"plays_count" bson:"plays_count"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content    string `json:"content" validate:"required,min=1,max=500"`
	TrackURL   string `json:"track_url,omitempty" validate:"omitempty,url"`
	TrackTitle string `json:"track_title,omitempty" validate:"omitempty,max=200"`
	ArtworkURL string `json:"artwork_url,omitempty" validate:"omitempty,url"`
}
