package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Veritas_Network/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StoryRepository handles database operations for ephemeral stories.
type StoryRepository struct {
	collection *mongo.Collection
}

// NewStoryRepository creates a new instance of StoryRepository.
func NewStoryRepository(db *mongo.Database) *StoryRepository {
	return &StoryRepository{
		collection: db.Collection("stories"),
	}
}

// CreateStory inserts a new story.
func (r *StoryRepository) CreateStory(ctx context.Context, story *models.Story) (*models.Story, error) {
	result, err := r.collection.InsertOne(ctx, story)
	if err != nil {
		return nil, fmt.Errorf("failed to insert story: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	story.ID = insertedID
	return story, nil
}

// ListActiveStories returns stories with expires_at in the future, newest
// first. The filter is the visibility guarantee; the TTL index only reclaims
// expired documents eventually.
func (r *StoryRepository) ListActiveStories(ctx context.Context, now time.Time) ([]models.Story, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"expires_at": bson.M{"$gt": now}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list active stories: %v", err)
	}
	defer cursor.Close(ctx)

	var stories []models.Story
	for cursor.Next(ctx) {
		var story models.Story
		if err := cursor.Decode(&story); err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, nil
}

// GetStoryByID fetches a single story. Returns (nil, nil) when missing.
func (r *StoryRepository) GetStoryByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	var story models.Story
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&story)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find story: %v", err)
	}
	return &story, nil
}

// MarkViewed records a view, counting each viewer at most once.
func (r *StoryRepository) MarkViewed(ctx context.Context, storyID, viewerID primitive.ObjectID) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": storyID, "viewed_by": bson.M{"$ne": viewerID}},
		bson.M{
			"$addToSet": bson.M{"viewed_by": viewerID},
			"$inc":      bson.M{"views_count": 1},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark story viewed: %v", err)
	}
	return res.ModifiedCount > 0, nil
}

// DeleteExpired removes stories past their TTL. Best effort cleanup on top of
// the TTL index.
func (r *StoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired stories: %v", err)
	}
	if res.DeletedCount > 0 {
		logrus.WithField("count", res.DeletedCount).Info("Expired stories removed")
	}
	return res.DeletedCount, nil
}
