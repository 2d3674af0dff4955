package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/Dias221467/Veritas_Network/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository handles database operations related to users, including the
// friendship edges stored on each user document.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert user into database")
		return nil, fmt.Errorf("failed to insert user: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted ID to ObjectID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	user.ID = insertedID

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

// GetUserByEmail retrieves a user by email. Returns (nil, nil) when no user
// has that email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %v", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by their ID. Returns (nil, nil) when missing.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id: %v", err)
	}
	return &user, nil
}

// UpdateUser applies a partial update to a user document.
func (r *UserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Error("Failed to update user")
		return fmt.Errorf("failed to update user: %v", err)
	}
	return nil
}

// TouchLastActive updates the user's last activity timestamp.
func (r *UserRepository) TouchLastActive(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_active": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to touch last_active: %v", err)
	}
	return nil
}

// SearchUsers runs a case-insensitive substring match over name and email,
// excluding the given user, most recently updated first.
func (r *UserRepository) SearchUsers(ctx context.Context, query string, excludeID primitive.ObjectID, limit int64) ([]models.User, error) {
	pattern := regexp.QuoteMeta(query)
	filter := bson.M{
		"$and": []bson.M{
			{"_id": bson.M{"$ne": excludeID}},
			{"$or": []bson.M{
				{"name": bson.M{"$regex": pattern, "$options": "i"}},
				{"email": bson.M{"$regex": pattern, "$options": "i"}},
			}},
		},
	}

	opts := options.Find().SetSort(bson.M{"updated_at": -1}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %v", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// GetUsersByIDs fetches user details for a list of ObjectIDs.
func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users by IDs: %v", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *UserRepository) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %v", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %v", err)
		}
		users = append(users, &user)
	}
	return users, nil
}

// UserExists checks for a user document without decoding it.
func (r *UserRepository) UserExists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %v", err)
	}
	return count > 0, nil
}

// IsFriend reports whether other is in user's friends array.
func (r *UserRepository) IsFriend(ctx context.Context, userID, otherID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": userID, "friends": otherID})
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %v", err)
	}
	return count > 0, nil
}

// HasOutgoingRequest reports whether user has a pending outgoing request to other.
func (r *UserRepository) HasOutgoingRequest(ctx context.Context, userID, otherID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": userID, "friend_requests_outgoing": otherID})
	if err != nil {
		return false, fmt.Errorf("failed to check outgoing request: %v", err)
	}
	return count > 0, nil
}

// HasIncomingRequest reports whether user has a pending incoming request from other.
func (r *UserRepository) HasIncomingRequest(ctx context.Context, userID, otherID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": userID, "friend_requests_incoming": otherID})
	if err != nil {
		return false, fmt.Errorf("failed to check incoming request: %v", err)
	}
	return count > 0, nil
}

// AddOutgoingRequest marks a pending outgoing request on the sender document.
// The filter re-verifies the preconditions at write time, so a racing call
// that already made them friends or already recorded the request is reported
// as blocked (false) instead of silently duplicating state.
func (r *UserRepository) AddOutgoingRequest(ctx context.Context, senderID, receiverID primitive.ObjectID) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":                      senderID,
			"friends":                  bson.M{"$ne": receiverID},
			"friend_requests_outgoing": bson.M{"$ne": receiverID},
		},
		bson.M{
			"$addToSet": bson.M{"friend_requests_outgoing": receiverID},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to add outgoing request: %v", err)
	}
	return res.MatchedCount > 0, nil
}

// AddIncomingRequest marks a pending incoming request on the receiver
// document, guarded the same way as AddOutgoingRequest.
func (r *UserRepository) AddIncomingRequest(ctx context.Context, receiverID, senderID primitive.ObjectID) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":                      receiverID,
			"friends":                  bson.M{"$ne": senderID},
			"friend_requests_incoming": bson.M{"$ne": senderID},
		},
		bson.M{
			"$addToSet": bson.M{"friend_requests_incoming": senderID},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to add incoming request: %v", err)
	}
	return res.MatchedCount > 0, nil
}

// RemoveOutgoingRequest clears a pending outgoing request (rollback or decline path).
func (r *UserRepository) RemoveOutgoingRequest(ctx context.Context, senderID, receiverID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": senderID},
		bson.M{
			"$pull": bson.M{"friend_requests_outgoing": receiverID},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to remove outgoing request: %v", err)
	}
	return nil
}

// RemoveIncomingRequest clears a pending incoming request.
func (r *UserRepository) RemoveIncomingRequest(ctx context.Context, receiverID, senderID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": receiverID},
		bson.M{
			"$pull": bson.M{"friend_requests_incoming": senderID},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to remove incoming request: %v", err)
	}
	return nil
}

// AcceptIncomingEdge atomically converts the receiver's incoming request from
// sender into a friendship, on the receiver document only. The matching
// sender-side conversion is AcceptOutgoingEdge.
func (r *UserRepository) AcceptIncomingEdge(ctx context.Context, receiverID, senderID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": receiverID},
		bson.M{
			"$pull":     bson.M{"friend_requests_incoming": senderID},
			"$addToSet": bson.M{"friends": senderID},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to accept incoming edge: %v", err)
	}
	return nil
}

// AcceptOutgoingEdge converts the sender's outgoing request into a friendship
// on the sender document.
func (r *UserRepository) AcceptOutgoingEdge(ctx context.Context, senderID, receiverID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": senderID},
		bson.M{
			"$pull":     bson.M{"friend_requests_outgoing": receiverID},
			"$addToSet": bson.M{"friends": receiverID},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to accept outgoing edge: %v", err)
	}
	return nil
}

// RemoveFriendEdge pulls other from user's friends array (one direction).
func (r *UserRepository) RemoveFriendEdge(ctx context.Context, userID, otherID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$pull": bson.M{"friends": otherID},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to remove friend edge: %v", err)
	}
	return nil
}
