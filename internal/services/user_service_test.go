package services

import (
	"context"
	"sync"
	"testing"

	"github.com/Dias221467/Veritas_Network/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memUserStore is an in-memory UserStore keyed by email and ID.
type memUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (m *memUserStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *user
	stored.ID = primitive.NewObjectID()
	m.users[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memUserStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, found := m.users[id]
	if !found {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (m *memUserStore) UpdateUser(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, found := m.users[id]
	if !found {
		return nil
	}
	if v, present := updates["name"]; present {
		u.Name = v.(string)
	}
	if v, present := updates["picture"]; present {
		u.Picture = v.(string)
	}
	if v, present := updates["description"]; present {
		u.Description = v.(string)
	}
	if v, present := updates["phone"]; present {
		u.Phone = v.(string)
	}
	return nil
}

func (m *memUserStore) TouchLastActive(_ context.Context, id primitive.ObjectID) error {
	return nil
}

func (m *memUserStore) GetAllUsers(_ context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func TestRegisterUser(t *testing.T) {
	store := newMemUserStore()
	svc := NewUserService(store)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, "Alice", "  ALICE@Example.com ", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email, "email is normalized")
	assert.Equal(t, "user", user.Role)
	assert.NotEqual(t, "hunter22", user.HashedPassword, "password must be hashed")
	assert.False(t, user.ID.IsZero())
}

func TestRegisterUserValidation(t *testing.T) {
	store := newMemUserStore()
	svc := NewUserService(store)
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, "", "a@example.com", "pw")
	assert.Error(t, err)
	_, err = svc.RegisterUser(ctx, "Alice", "not-an-email", "pw")
	assert.Error(t, err)
	_, err = svc.RegisterUser(ctx, "Alice", "a@example.com", "")
	assert.Error(t, err)

	_, err = svc.RegisterUser(ctx, "Alice", "a@example.com", "pw123456")
	require.NoError(t, err)
	// Same email again, case-insensitive.
	_, err = svc.RegisterUser(ctx, "Impostor", "A@Example.com", "pw123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in use")
}

func TestAuthenticateUser(t *testing.T) {
	store := newMemUserStore()
	svc := NewUserService(store)
	ctx := context.Background()

	registered, err := svc.RegisterUser(ctx, "Alice", "alice@example.com", "s3cret-pw")
	require.NoError(t, err)

	user, err := svc.AuthenticateUser(ctx, "Alice@Example.com", "s3cret-pw")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	// Wrong password and unknown account fail identically.
	_, badPw := svc.AuthenticateUser(ctx, "alice@example.com", "wrong")
	require.Error(t, badPw)
	_, noUser := svc.AuthenticateUser(ctx, "nobody@example.com", "s3cret-pw")
	require.Error(t, noUser)
	assert.Equal(t, badPw.Error(), noUser.Error())
}

func TestUpdateProfileWhitelist(t *testing.T) {
	store := newMemUserStore()
	svc := NewUserService(store)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, "Alice", "alice@example.com", "pw123456")
	require.NoError(t, err)

	err = svc.UpdateProfile(ctx, user.ID.Hex(), map[string]string{
		"name":  "Alice B",
		"phone": "+777",
		"email": "evil@example.com",
		"role":  "admin",
	})
	require.NoError(t, err)

	updated, err := svc.GetUser(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
	assert.Equal(t, "+777", updated.Phone)
	assert.Equal(t, "alice@example.com", updated.Email, "email is not user-editable")
	assert.Equal(t, "user", updated.Role, "role is not user-editable")

	err = svc.UpdateProfile(ctx, user.ID.Hex(), map[string]string{"email": "x@example.com"})
	assert.Error(t, err, "updates with no allowed fields are rejected")
}

func TestGetUser(t *testing.T) {
	store := newMemUserStore()
	svc := NewUserService(store)
	ctx := context.Background()

	_, err := svc.GetUser(ctx, "nope")
	assert.Error(t, err)

	_, err = svc.GetUser(ctx, primitive.NewObjectID().Hex())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
