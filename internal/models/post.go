package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Verdict display tags. A post starts Pending and is moved to one of the other
// tags by the moderation pipeline (or a trusted client, if enabled).
const (
	TagPending       = "Pending"
	TagVerified      = "Verified"
	TagMisleading    = "Misleading"
	TagFalse         = "False"
	TagOutdated      = "Outdated"
	TagUnverified    = "Unverified"
	TagNotApplicable = "Not Applicable"
)

// Verdict is the credibility outcome attached to a post. Score is nil until an
// analysis produced one; Error records the last analysis failure, if any.
type Verdict struct {
	Tag       string     `bson:"tag" json:"tag"`
	Summary   string     `bson:"summary" json:"summary"`
	Score     *int       `bson:"score" json:"score"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	Error     string     `bson:"error,omitempty" json:"-"`
}

// PendingVerdict is the verdict every post starts with.
func PendingVerdict() Verdict {
	return Verdict{Tag: TagPending}
}

// Comment is a single post comment. Only its author may delete it.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Post is a feed post with its embedded moderation verdict, like set and
// comment list. LikesCount/CommentsCount are denormalized and kept consistent
// with the arrays by guarded repository updates.
type Post struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID   `bson:"user_id" json:"user_id"`
	Content       string               `bson:"content" json:"content"`
	MediaURL      string               `bson:"media_url,omitempty" json:"media_url,omitempty"`
	AI            Verdict              `bson:"ai" json:"ai"`
	LikedBy       []primitive.ObjectID `bson:"liked_by,omitempty" json:"-"`
	LikesCount    int                  `bson:"likes_count" json:"likes_count"`
	Comments      []Comment            `bson:"comments,omitempty" json:"comments"`
	CommentsCount int                  `bson:"comments_count" json:"comments_count"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updated_at"`
}
