package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoryTTL is the hard lifetime of a story.
const StoryTTL = 24 * time.Hour

// Story is an ephemeral piece of content. Visibility is always the predicate
// now < ExpiresAt; the TTL index and the cron sweep only reclaim storage.
type Story struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID   `bson:"user_id" json:"user_id"`
	Text       string               `bson:"text" json:"text"`
	MediaURL   string               `bson:"media_url,omitempty" json:"media_url,omitempty"`
	MediaType  string               `bson:"media_type" json:"media_type"`
	ViewedBy   []primitive.ObjectID `bson:"viewed_by,omitempty" json:"-"`
	ViewsCount int                  `bson:"views_count" json:"views_count"`
	CreatedAt  time.Time            `bson:"created_at" json:"created_at"`
	ExpiresAt  time.Time            `bson:"expires_at" json:"expires_at"`
}

// Expired reports whether the story is past its TTL at the given instant.
func (s *Story) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// StoryGroup is one author's active stories, newest first.
type StoryGroup struct {
	User            PublicUser `json:"user"`
	LatestCreatedAt time.Time  `json:"latestCreatedAt"`
	Items           []Story    `json:"items"`
}

// DeriveMediaType guesses a coarse media type from a URL.
func DeriveMediaType(url string) string {
	if url == "" {
		return "none"
	}
	u := strings.ToLower(url)
	for _, ext := range []string{".mp4", ".webm", ".ogg"} {
		if strings.HasSuffix(u, ext) {
			return "video"
		}
	}
	return "image"
}
