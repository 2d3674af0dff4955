package services

import (
	"context"
	"fmt"

	"github.com/Dias221467/Veritas_Network/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Business-rule codes returned by the friend state machine. These are result
// values, not errors: callers map them to precise user-facing messages.
const (
	CodeInvalidID        = "invalid_id"
	CodeSelfRequest      = "self_request"
	CodeSelfAccept       = "self_accept"
	CodeSelfDecline      = "self_decline"
	CodeTargetNotFound   = "target_not_found"
	CodeSenderNotFound   = "sender_not_found"
	CodeAlreadyFriends   = "already_friends"
	CodeAlreadyRequested = "already_requested"
	CodeNoPendingRequest = "no_pending_request"
	CodeNotFriends       = "not_friends"
	CodeSenderBlocked    = "sender_update_blocked"
	CodeTargetBlocked    = "target_update_blocked"
)

// FriendResult reports the outcome of a state-machine transition.
type FriendResult struct {
	OK   bool   `json:"ok"`
	Code string `json:"code,omitempty"`
}

func accepted() FriendResult { return FriendResult{OK: true} }

func rejected(code string) FriendResult { return FriendResult{Code: code} }

// FriendStore is the relationship storage contract the state machine runs
// against. Edge writes are guarded single-document updates: the store
// re-verifies preconditions at write time and reports a blocked write instead
// of duplicating state, which is what makes optimistic check-then-write safe
// here without cross-document transactions.
type FriendStore interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UserExists(ctx context.Context, id primitive.ObjectID) (bool, error)
	SearchUsers(ctx context.Context, query string, excludeID primitive.ObjectID, limit int64) ([]models.User, error)

	IsFriend(ctx context.Context, userID, otherID primitive.ObjectID) (bool, error)
	HasOutgoingRequest(ctx context.Context, userID, otherID primitive.ObjectID) (bool, error)
	HasIncomingRequest(ctx context.Context, userID, otherID primitive.ObjectID) (bool, error)

	AddOutgoingRequest(ctx context.Context, senderID, receiverID primitive.ObjectID) (bool, error)
	AddIncomingRequest(ctx context.Context, receiverID, senderID primitive.ObjectID) (bool, error)
	RemoveOutgoingRequest(ctx context.Context, senderID, receiverID primitive.ObjectID) error
	RemoveIncomingRequest(ctx context.Context, receiverID, senderID primitive.ObjectID) error
	AcceptIncomingEdge(ctx context.Context, receiverID, senderID primitive.ObjectID) error
	AcceptOutgoingEdge(ctx context.Context, senderID, receiverID primitive.ObjectID) error
	RemoveFriendEdge(ctx context.Context, userID, otherID primitive.ObjectID) error
}

// FriendService enforces the friend-request/friendship state machine across
// the two participants' documents. There is no multi-document transaction:
// every two-sided transition writes one side, then the other, and compensates
// the first write if the second cannot be committed, so the pair never ends up
// with only one side recording the edge.
type FriendService struct {
	store FriendStore
}

// NewFriendService creates a new FriendService.
func NewFriendService(store FriendStore) *FriendService {
	return &FriendService{store: store}
}

// SendRequest creates a pending request sender -> receiver. Returns a
// FriendResult for business-rule violations and an error only for
// infrastructure failure.
func (s *FriendService) SendRequest(ctx context.Context, senderID, receiverID string) (FriendResult, error) {
	sender, err := primitive.ObjectIDFromHex(senderID)
	if err != nil {
		return rejected(CodeInvalidID), nil
	}
	receiver, err := primitive.ObjectIDFromHex(receiverID)
	if err != nil {
		return rejected(CodeInvalidID), nil
	}
	if sender == receiver {
		return rejected(CodeSelfRequest), nil
	}

	exists, err := s.store.UserExists(ctx, receiver)
	if err != nil {
		return FriendResult{}, err
	}
	if !exists {
		return rejected(CodeTargetNotFound), nil
	}

	friends, err := s.store.IsFriend(ctx, sender, receiver)
	if err != nil {
		return FriendResult{}, err
	}
	if friends {
		return rejected(CodeAlreadyFriends), nil
	}

	requested, err := s.store.HasOutgoingRequest(ctx, sender, receiver)
	if err != nil {
		return FriendResult{}, err
	}
	if requested {
		return rejected(CodeAlreadyRequested), nil
	}

	// Two-step write: sender outgoing first, then receiver incoming. The
	// guarded update re-checks the preconditions, so a racing call surfaces
	// as a blocked write rather than duplicate state.
	applied, err := s.store.AddOutgoingRequest(ctx, sender, receiver)
	if err != nil {
		return FriendResult{}, err
	}
	if !applied {
		return rejected(CodeSenderBlocked), nil
	}

	applied, err = s.store.AddIncomingRequest(ctx, receiver, sender)
	if err != nil {
		// The sender side already committed; undo it before reporting, so the
		// pair is never left with a one-sided pending request.
		if rbErr := s.store.RemoveOutgoingRequest(ctx, sender, receiver); rbErr != nil {
			logrus.WithFields(logrus.Fields{
				"sender":   senderID,
				"receiver": receiverID,
				"error":    rbErr,
			}).Error("Rollback of outgoing request failed, state inconsistent")
		}
		return FriendResult{}, err
	}
	if !applied {
		if rbErr := s.store.RemoveOutgoingRequest(ctx, sender, receiver); rbErr != nil {
			logrus.WithFields(logrus.Fields{
				"sender":   senderID,
				"receiver": receiverID,
				"error":    rbErr,
			}).Error("Rollback of outgoing request failed, state inconsistent")
		}
		return rejected(CodeTargetBlocked), nil
	}

	logrus.WithFields(logrus.Fields{
		"sender":   senderID,
		"receiver": receiverID,
	}).Info("Friend request sent")
	return accepted(), nil
}

// AcceptRequest transitions a pending sender -> receiver request into a
// friendship. Only the receiver may accept.
func (s *FriendService) AcceptRequest(ctx context.Context, receiverID, senderID string) (FriendResult, error) {
	receiver, err := primitive.ObjectIDFromHex(receiverID)
	if err != nil {
		return rejected(CodeInvalidID), nil
	}
	sender, err := primitive.ObjectIDFromHex(senderID)
	if err != nil {
		return rejected(CodeInvalidID), nil
	}
	if receiver == sender {
		return rejected(CodeSelfAccept), nil
	}

	exists, err := s.store.UserExists(ctx, sender)
	if err != nil {
		return FriendResult{}, err
	}
	if !exists {
		return rejected(CodeSenderNotFound), nil
	}

	friends, err := s.store.IsFriend(ctx, receiver, sender)
	if err != nil {
		return FriendResult{}, err
	}
	if friends {
		return rejected(CodeAlreadyFriends), nil
	}

	pending, err := s.store.HasIncomingRequest(ctx, receiver, sender)
	if err != nil {
		return FriendResult{}, err
	}
	if !pending {
		return rejected(CodeNoPendingRequest), nil
	}

	// Receiver side first: pulling the incoming request and inserting the
	// friend edge is one atomic document update and acts as the durability
	// anchor for the transition.
	if err := s.store.AcceptIncomingEdge(ctx, receiver, sender); err != nil {
		return FriendResult{}, err
	}

	if err := s.store.AcceptOutgoingEdge(ctx, sender, receiver); err != nil {
		// Compensate: restore the receiver document to its pre-transition
		// state so the friendship does not exist in one direction only.
		if rbErr := s.store.RemoveFriendEdge(ctx, receiver, sender); rbErr != nil {
			logrus.WithFields(logrus.Fields{
				"receiver": receiverID,
				"sender":   senderID,
				"error":    rbErr,
			}).Error("Rollback of accepted edge failed, state inconsistent")
			return FriendResult{}, err
		}
		if _, rbErr := s.store.AddIncomingRequest(ctx, receiver, sender); rbErr != nil {
			logrus.WithFields(logrus.Fields{
				"receiver": receiverID,
				"sender":   senderID,
				"error":    rbErr,
			}).Error("Failed to restore pending request during rollback")
		}
		return FriendResult{}, err
	}

	logrus.WithFields(logrus.Fields{
		"receiver": receiverID,
		"sender":   senderID,
	}).Info("Friend request accepted")
	return accepted(), nil
}

// DeclineRequest removes a pending sender -> receiver request without creating
// a friendship. Terminal: nothing blocks a later re-request in either
// direction.
func (s *FriendService) DeclineRequest(ctx context.Context, receiverID, senderID string) (FriendResult, error) {
	receiver, err := primitive.ObjectIDFromHex(receiverID)
	if err != nil {
		return rejected(CodeInvalidID), nil
	}
	sender, err := primitive.ObjectIDFromHex(senderID)
	if err != nil {
		return rejected(CodeInvalidID), nil
	}
	if receiver == sender {
		return rejected(CodeSelfDecline), nil
	}

	pending, err := s.store.HasIncomingRequest(ctx, receiver, sender)
	if err != nil {
		return FriendResult{}, err
	}
	if !pending {
		return rejected(CodeNoPendingRequest), nil
	}

	if err := s.store.RemoveIncomingRequest(ctx, receiver, sender); err != nil {
		return FriendResult{}, err
	}
	if err := s.store.RemoveOutgoingRequest(ctx, sender, receiver); err != nil {
		if _, rbErr := s.store.AddIncomingRequest(ctx, receiver, sender); rbErr != nil {
			logrus.WithFields(logrus.Fields{
				"receiver": receiverID,
				"sender":   senderID,
				"error":    rbErr,
			}).Error("Failed to restore incoming request during rollback")
		}
		return FriendResult{}, err
	}

	logrus.WithFields(logrus.Fields{
		"receiver": receiverID,
		"sender":   senderID,
	}).Info("Friend request declined")
	return accepted(), nil
}

// RemoveFriend deletes the friendship edge from both documents.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID string) (FriendResult, error) {
	user, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return rejected(CodeInvalidID), nil
	}
	friend, err := primitive.ObjectIDFromHex(friendID)
	if err != nil {
		return rejected(CodeInvalidID), nil
	}

	friends, err := s.store.IsFriend(ctx, user, friend)
	if err != nil {
		return FriendResult{}, err
	}
	if !friends {
		return rejected(CodeNotFriends), nil
	}

	if err := s.store.RemoveFriendEdge(ctx, user, friend); err != nil {
		return FriendResult{}, err
	}
	if err := s.store.RemoveFriendEdge(ctx, friend, user); err != nil {
		return FriendResult{}, err
	}
	return accepted(), nil
}

// SearchUsers matches name/email case-insensitively, excludes the caller and
// annotates each candidate with the caller's relation to it. The caller's
// friend and pending sets are snapshotted once per call.
func (s *FriendService) SearchUsers(ctx context.Context, callerID, query string, limit int) ([]models.UserSearchResult, error) {
	caller, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return nil, fmt.Errorf("invalid caller ID: %v", err)
	}

	me, err := s.store.GetUserByID(ctx, caller)
	if err != nil {
		return nil, err
	}
	if me == nil {
		return nil, fmt.Errorf("caller not found")
	}

	friendsSet := idSet(me.Friends)
	incomingSet := idSet(me.RequestsIn)
	outgoingSet := idSet(me.RequestsOut)

	if limit <= 0 {
		limit = 10
	}
	if limit > 20 {
		limit = 20
	}

	users, err := s.store.SearchUsers(ctx, query, caller, int64(limit))
	if err != nil {
		return nil, err
	}

	results := make([]models.UserSearchResult, 0, len(users))
	for _, u := range users {
		results = append(results, models.UserSearchResult{
			PublicUser:      u.Public(),
			IsFriend:        friendsSet[u.ID],
			IncomingPending: incomingSet[u.ID],
			OutgoingPending: outgoingSet[u.ID],
		})
	}
	return results, nil
}

// GetFriendIDs returns the user's friend set.
func (s *FriendService) GetFriendIDs(ctx context.Context, userID string) ([]primitive.ObjectID, error) {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Friends, nil
}

// GetPendingRequestSets returns both directions of the user's open requests.
func (s *FriendService) GetPendingRequestSets(ctx context.Context, userID string) (*models.PendingRequestSets, error) {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.PendingRequestSets{
		Incoming: user.RequestsIn,
		Outgoing: user.RequestsOut,
	}, nil
}

// GetFriends returns the user's friends as public profiles.
func (s *FriendService) GetFriends(ctx context.Context, userID string) ([]models.PublicUser, error) {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.publicProfiles(ctx, user.Friends)
}

// GetIncomingRequests returns the senders of the user's pending incoming
// requests as public profiles.
func (s *FriendService) GetIncomingRequests(ctx context.Context, userID string) ([]models.PublicUser, error) {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.publicProfiles(ctx, user.RequestsIn)
}

func (s *FriendService) lookup(ctx context.Context, userID string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}
	return user, nil
}

func (s *FriendService) publicProfiles(ctx context.Context, ids []primitive.ObjectID) ([]models.PublicUser, error) {
	if len(ids) == 0 {
		return []models.PublicUser{}, nil
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	profiles := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Public())
	}
	return profiles, nil
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]bool {
	set := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
