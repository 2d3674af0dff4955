package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account in the Veritas Network system. Friendship state
// lives on the user document itself: the friends array plus the two pending
// request arrays. Both sides of any edge must agree (see services.FriendService).
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name           string               `bson:"name" json:"name"`
	Email          string               `bson:"email" json:"email"`
	HashedPassword string               `bson:"hashed_password" json:"-"`
	Role           string               `bson:"role" json:"role"`
	Picture        string               `bson:"picture,omitempty" json:"picture,omitempty"`
	Description    string               `bson:"description,omitempty" json:"description,omitempty"`
	Phone          string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Friends        []primitive.ObjectID `bson:"friends,omitempty" json:"friends,omitempty"`
	RequestsIn     []primitive.ObjectID `bson:"friend_requests_incoming,omitempty" json:"-"`
	RequestsOut    []primitive.ObjectID `bson:"friend_requests_outgoing,omitempty" json:"-"`
	LastActive     time.Time            `bson:"last_active,omitempty" json:"-"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updated_at"`
}

// PublicUser is the profile shape exposed to other users.
type PublicUser struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Picture     string             `json:"picture,omitempty"`
	Description string             `json:"description,omitempty"`
}

// UserSearchResult is a search candidate annotated with the caller's current
// relation to it.
type UserSearchResult struct {
	PublicUser
	IsFriend        bool `json:"isFriend"`
	IncomingPending bool `json:"incomingPending"`
	OutgoingPending bool `json:"outgoingPending"`
}

// PendingRequestSets holds both directions of a user's open friend requests.
type PendingRequestSets struct {
	Incoming []primitive.ObjectID `json:"incoming"`
	Outgoing []primitive.ObjectID `json:"outgoing"`
}

// Public converts a full user document to its public shape.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Picture:     u.Picture,
		Description: u.Description,
	}
}
