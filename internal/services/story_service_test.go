package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Dias221467/Veritas_Network/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStoryStore is an in-memory StoryStore.
type memStoryStore struct {
	mu      sync.Mutex
	stories map[primitive.ObjectID]*models.Story
	names   map[primitive.ObjectID]string
}

func newMemStoryStore() *memStoryStore {
	return &memStoryStore{
		stories: make(map[primitive.ObjectID]*models.Story),
		names:   make(map[primitive.ObjectID]string),
	}
}

func (m *memStoryStore) CreateStory(_ context.Context, story *models.Story) (*models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *story
	stored.ID = primitive.NewObjectID()
	m.stories[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memStoryStore) GetStoryByID(_ context.Context, id primitive.ObjectID) (*models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, found := m.stories[id]
	if !found {
		return nil, nil
	}
	out := *s
	return &out, nil
}

func (m *memStoryStore) ListActiveStories(_ context.Context, now time.Time) ([]models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Story
	for _, s := range m.stories {
		if now.Before(s.ExpiresAt) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStoryStore) MarkViewed(_ context.Context, storyID, viewerID primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, found := m.stories[storyID]
	if !found {
		return false, nil
	}
	for _, id := range s.ViewedBy {
		if id == viewerID {
			return false, nil
		}
	}
	s.ViewedBy = append(s.ViewedBy, viewerID)
	s.ViewsCount++
	return true, nil
}

func (m *memStoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, s := range m.stories {
		if !now.Before(s.ExpiresAt) {
			delete(m.stories, id)
			deleted++
		}
	}
	return deleted, nil
}

// GetUsersByIDs lets the same fake double as the StoryUserStore.
func (m *memStoryStore) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if name, found := m.names[id]; found {
			out = append(out, models.User{ID: id, Name: name})
		}
	}
	return out, nil
}

func (m *memStoryStore) addProfile(name string) primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := primitive.NewObjectID()
	m.names[id] = name
	return id
}

// newTestStoryService pins the clock so expiry can be tested by advancing it.
func newTestStoryService(store *memStoryStore) (*StoryService, *time.Time) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc := NewStoryService(store, store)
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestCreateStorySetsTTL(t *testing.T) {
	store := newMemStoryStore()
	svc, now := newTestStoryService(store)
	author := store.addProfile("Alice")

	story, err := svc.CreateStory(context.Background(), author.Hex(), "at the beach", "")
	require.NoError(t, err)
	assert.Equal(t, now.Add(models.StoryTTL), story.ExpiresAt)
	assert.Equal(t, *now, story.CreatedAt)
}

func TestCreateStoryValidation(t *testing.T) {
	store := newMemStoryStore()
	svc, _ := newTestStoryService(store)
	author := store.addProfile("Alice")
	ctx := context.Background()

	_, err := svc.CreateStory(ctx, "bad-id", "text", "")
	assert.Error(t, err)

	_, err = svc.CreateStory(ctx, author.Hex(), "   ", "")
	assert.Error(t, err)

	_, err = svc.CreateStory(ctx, author.Hex(), strings.Repeat("a", maxStoryTextLen+1), "")
	assert.Error(t, err)

	story, err := svc.CreateStory(ctx, author.Hex(), "", "/uploads/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "video", story.MediaType)

	story, err = svc.CreateStory(ctx, author.Hex(), "", "/uploads/pic.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image", story.MediaType)
}

func TestFeedGroupsByAuthor(t *testing.T) {
	store := newMemStoryStore()
	svc, now := newTestStoryService(store)
	alice := store.addProfile("Alice")
	bob := store.addProfile("Bob")
	ctx := context.Background()

	// Interleave: alice, bob, alice — with distinct timestamps.
	_, err := svc.CreateStory(ctx, alice.Hex(), "first", "")
	require.NoError(t, err)
	*now = now.Add(time.Minute)
	_, err = svc.CreateStory(ctx, bob.Hex(), "second", "")
	require.NoError(t, err)
	*now = now.Add(time.Minute)
	_, err = svc.CreateStory(ctx, alice.Hex(), "third", "")
	require.NoError(t, err)

	groups, err := svc.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Alice posted most recently, so her group comes first with both items,
	// newest first.
	assert.Equal(t, "Alice", groups[0].User.Name)
	require.Len(t, groups[0].Items, 2)
	assert.Equal(t, "third", groups[0].Items[0].Text)
	assert.Equal(t, "first", groups[0].Items[1].Text)
	assert.Equal(t, groups[0].Items[0].CreatedAt, groups[0].LatestCreatedAt)

	assert.Equal(t, "Bob", groups[1].User.Name)
	require.Len(t, groups[1].Items, 1)
}

func TestFeedHidesExpiredStories(t *testing.T) {
	store := newMemStoryStore()
	svc, now := newTestStoryService(store)
	alice := store.addProfile("Alice")
	ctx := context.Background()

	_, err := svc.CreateStory(ctx, alice.Hex(), "old", "")
	require.NoError(t, err)
	*now = now.Add(23 * time.Hour)
	_, err = svc.CreateStory(ctx, alice.Hex(), "fresh", "")
	require.NoError(t, err)

	// Two hours later the first story is past its TTL even though nothing
	// has deleted it from storage.
	*now = now.Add(2 * time.Hour)
	groups, err := svc.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Items, 1)
	assert.Equal(t, "fresh", groups[0].Items[0].Text)
}

func TestMarkViewed(t *testing.T) {
	store := newMemStoryStore()
	svc, now := newTestStoryService(store)
	alice := store.addProfile("Alice")
	viewer := store.addProfile("Viewer")
	ctx := context.Background()

	story, err := svc.CreateStory(ctx, alice.Hex(), "hello", "")
	require.NoError(t, err)

	require.NoError(t, svc.MarkViewed(ctx, story.ID.Hex(), viewer.Hex()))
	// Repeat views are absorbed without error and without double counting.
	require.NoError(t, svc.MarkViewed(ctx, story.ID.Hex(), viewer.Hex()))

	stored, err := store.GetStoryByID(ctx, story.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ViewsCount)

	assert.Error(t, svc.MarkViewed(ctx, primitive.NewObjectID().Hex(), viewer.Hex()))
	assert.Error(t, svc.MarkViewed(ctx, "bad-id", viewer.Hex()))

	// Expired stories reject views even before any cleanup runs.
	*now = now.Add(models.StoryTTL + time.Second)
	assert.Error(t, svc.MarkViewed(ctx, story.ID.Hex(), viewer.Hex()))
}

func TestReapExpired(t *testing.T) {
	store := newMemStoryStore()
	svc, now := newTestStoryService(store)
	alice := store.addProfile("Alice")
	ctx := context.Background()

	_, err := svc.CreateStory(ctx, alice.Hex(), "doomed", "")
	require.NoError(t, err)
	*now = now.Add(25 * time.Hour)
	fresh, err := svc.CreateStory(ctx, alice.Hex(), "kept", "")
	require.NoError(t, err)

	require.NoError(t, svc.ReapExpired(ctx))

	groups, err := svc.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, fresh.ID, groups[0].Items[0].ID)

	store.mu.Lock()
	remaining := len(store.stories)
	store.mu.Unlock()
	assert.Equal(t, 1, remaining)
}
