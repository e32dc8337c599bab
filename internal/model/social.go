package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PostRating struct {
	AverageRating decimal.Decimal `json:"averageRating" bson:"average_rating"`
	TotalRatings  int             `json:"totalRatings" bson:"total_ratings"`
}

type PostLocation struct {
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
	Country string `json:"country,omitempty" bson:"country,omitempty"`
}

// Post is a barber showcase entry.
type Post struct {
	Base        `bson:",inline"`
	Audit       `bson:",inline"`
	Title       string        `json:"title" bson:"title"`
	Author      uuid.UUID     `json:"author" bson:"author"`
	ClientName  string        `json:"clientName,omitempty" bson:"client_name,omitempty"`
	Description string        `json:"description,omitempty" bson:"description,omitempty"`
	Category    string        `json:"category" bson:"category"`
	Tags        []string      `json:"tags,omitempty" bson:"tags,omitempty"`
	IsPublic    bool          `json:"isPublic" bson:"is_public"`
	IsFeatured  bool          `json:"isFeatured" bson:"is_featured"`
	Likes       int           `json:"likes" bson:"likes"`
	Views       int           `json:"views" bson:"views"`
	Rating      PostRating    `json:"rating" bson:"rating"`
	Challenge   *uuid.UUID    `json:"challenge,omitempty" bson:"challenge,omitempty"`
	Location    *PostLocation `json:"location,omitempty" bson:"location,omitempty"`
}

// Rating is one user's score for a post, 1 to 10.
type Rating struct {
	Base    `bson:",inline"`
	Post    uuid.UUID `json:"post" bson:"post"`
	User    uuid.UUID `json:"user" bson:"user"`
	Rating  int       `json:"rating" bson:"rating"`
	Comment string    `json:"comment,omitempty" bson:"comment,omitempty"`
}

var PostCategories = []string{
	"fade", "pompadour", "undercut", "textured-crop", "slick-back", "quiff", "side-part",
	"buzz-cut", "long-hair", "braids", "dreadlocks", "color", "highlights", "other",
}

type CreatePostRequest struct {
	Title       string        `json:"title" binding:"required,max=200"`
	Author      *uuid.UUID    `json:"author"`
	ClientName  string        `json:"clientName"`
	Description string        `json:"description"`
	Category    string        `json:"category" binding:"required,post_category"`
	Tags        []string      `json:"tags"`
	IsPublic    *bool         `json:"isPublic"`
	IsFeatured  bool          `json:"isFeatured"`
	Challenge   *uuid.UUID    `json:"challenge"`
	Location    *PostLocation `json:"location"`
}

type CreateRatingRequest struct {
	Post    uuid.UUID  `json:"post" binding:"required"`
	User    *uuid.UUID `json:"user"`
	Rating  int        `json:"rating" binding:"required,min=1,max=10"`
	Comment string     `json:"comment" binding:"max=1000"`
}

type UpdateRatingRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=10"`
	Comment string `json:"comment" binding:"max=1000"`
}
