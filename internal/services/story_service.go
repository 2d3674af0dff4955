package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/Veritas_Network/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxStoryTextLen = 300

// StoryStore is the storage contract for ephemeral stories.
type StoryStore interface {
	CreateStory(ctx context.Context, story *models.Story) (*models.Story, error)
	GetStoryByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error)
	ListActiveStories(ctx context.Context, now time.Time) ([]models.Story, error)
	MarkViewed(ctx context.Context, storyID, viewerID primitive.ObjectID) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// StoryUserStore resolves story authors to public profiles.
type StoryUserStore interface {
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// StoryService manages ephemeral stories. Expiry is enforced by the
// now < expiresAt predicate on every read; storage cleanup (TTL index, cron
// sweep) never decides visibility.
type StoryService struct {
	store StoryStore
	users StoryUserStore
	now   func() time.Time
}

// NewStoryService creates a new StoryService.
func NewStoryService(store StoryStore, users StoryUserStore) *StoryService {
	return &StoryService{
		store: store,
		users: users,
		now:   time.Now,
	}
}

// CreateStory creates a story with a 24h TTL. Text and/or media required.
func (s *StoryService) CreateStory(ctx context.Context, userID, text, mediaURL string) (*models.Story, error) {
	authorID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}

	text = strings.TrimSpace(text)
	mediaURL = strings.TrimSpace(mediaURL)
	if text == "" && mediaURL == "" {
		return nil, fmt.Errorf("story must have text or media")
	}
	if len(text) > maxStoryTextLen {
		return nil, fmt.Errorf("story text too long")
	}

	now := s.now()
	story := &models.Story{
		UserID:    authorID,
		Text:      text,
		MediaURL:  mediaURL,
		MediaType: models.DeriveMediaType(mediaURL),
		CreatedAt: now,
		ExpiresAt: now.Add(models.StoryTTL),
	}

	created, err := s.store.CreateStory(ctx, story)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"storyID": created.ID.Hex(),
		"userID":  userID,
	}).Info("Story created")
	return created, nil
}

// Feed returns all active stories grouped per author, authors ordered by
// their latest story, items newest first within each group.
func (s *StoryService) Feed(ctx context.Context) ([]models.StoryGroup, error) {
	stories, err := s.store.ListActiveStories(ctx, s.now())
	if err != nil {
		return nil, err
	}

	// Stories arrive newest first, so the first story seen per author fixes
	// both the group order and LatestCreatedAt.
	var order []primitive.ObjectID
	grouped := make(map[primitive.ObjectID][]models.Story)
	for _, story := range stories {
		if _, seen := grouped[story.UserID]; !seen {
			order = append(order, story.UserID)
		}
		grouped[story.UserID] = append(grouped[story.UserID], story)
	}

	profiles := make(map[primitive.ObjectID]models.PublicUser)
	if len(order) > 0 {
		users, err := s.users.GetUsersByIDs(ctx, order)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			profiles[u.ID] = u.Public()
		}
	}

	groups := make([]models.StoryGroup, 0, len(order))
	for _, authorID := range order {
		items := grouped[authorID]
		user, known := profiles[authorID]
		if !known {
			user = models.PublicUser{ID: authorID}
		}
		groups = append(groups, models.StoryGroup{
			User:            user,
			LatestCreatedAt: items[0].CreatedAt,
			Items:           items,
		})
	}
	return groups, nil
}

// MarkViewed records a view for the story, each viewer counted at most once.
// Expired stories cannot be viewed regardless of cleanup timing.
func (s *StoryService) MarkViewed(ctx context.Context, storyID, viewerID string) error {
	sid, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return fmt.Errorf("invalid story ID: %v", err)
	}
	vid, err := primitive.ObjectIDFromHex(viewerID)
	if err != nil {
		return fmt.Errorf("invalid user ID: %v", err)
	}

	story, err := s.store.GetStoryByID(ctx, sid)
	if err != nil {
		return err
	}
	if story == nil || story.Expired(s.now()) {
		return fmt.Errorf("story not found")
	}

	_, err = s.store.MarkViewed(ctx, sid, vid)
	return err
}

// ReapExpired deletes stories past their TTL. Called from the cron sweep.
func (s *StoryService) ReapExpired(ctx context.Context) error {
	_, err := s.store.DeleteExpired(ctx, s.now())
	return err
}
