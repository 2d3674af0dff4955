package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Veritas_Network/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository handles database operations for posts, their embedded
// verdicts, likes and comments.
type PostRepository struct {
	collection *mongo.Collection
}

// NewPostRepository creates a new instance of PostRepository.
func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{
		collection: db.Collection("posts"),
	}
}

// CreatePost inserts a new post.
func (r *PostRepository) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt

	result, err := r.collection.InsertOne(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	post.ID = insertedID
	return post, nil
}

// GetPostByID fetches a single post. Returns (nil, nil) when missing.
func (r *PostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %v", err)
	}
	return &post, nil
}

// ListUserPosts returns a user's posts, newest first.
func (r *PostRepository) ListUserPosts(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %v", err)
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	for cursor.Next(ctx) {
		var post models.Post
		if err := cursor.Decode(&post); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// UpdateVerdict replaces the post's verdict wholesale. Last write wins; fields
// are never merged across writers.
func (r *PostRepository) UpdateVerdict(ctx context.Context, postID primitive.ObjectID, verdict models.Verdict) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$set": bson.M{
			"ai":         verdict,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update post verdict: %v", err)
	}
	return nil
}

// LikePost adds the user to the like set. Returns false without modifying
// anything when the user already liked the post, so the denormalized count
// can never drift from the set.
func (r *PostRepository) LikePost(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": postID, "liked_by": bson.M{"$ne": userID}},
		bson.M{
			"$addToSet": bson.M{"liked_by": userID},
			"$inc":      bson.M{"likes_count": 1},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to like post: %v", err)
	}
	return res.ModifiedCount > 0, nil
}

// UnlikePost removes the user from the like set, symmetric to LikePost.
func (r *PostRepository) UnlikePost(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": postID, "liked_by": userID},
		bson.M{
			"$pull": bson.M{"liked_by": userID},
			"$inc":  bson.M{"likes_count": -1},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to unlike post: %v", err)
	}
	return res.ModifiedCount > 0, nil
}

// AddComment appends a comment with a generated id and timestamp.
func (r *PostRepository) AddComment(ctx context.Context, postID, userID primitive.ObjectID, text string) (primitive.ObjectID, error) {
	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{
			"$push": bson.M{"comments": comment},
			"$inc":  bson.M{"comments_count": 1},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to add comment: %v", err)
	}
	if res.MatchedCount == 0 {
		return primitive.NilObjectID, nil
	}
	return comment.ID, nil
}

// DeleteComment removes a comment only when the (post, comment, author)
// triple matches. Returns false when nothing matched.
func (r *PostRepository) DeleteComment(ctx context.Context, postID, commentID, userID primitive.ObjectID) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":      postID,
			"comments": bson.M{"$elemMatch": bson.M{"_id": commentID, "user_id": userID}},
		},
		bson.M{
			"$pull": bson.M{"comments": bson.M{"_id": commentID}},
			"$inc":  bson.M{"comments_count": -1},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete comment: %v", err)
	}
	return res.ModifiedCount > 0, nil
}
