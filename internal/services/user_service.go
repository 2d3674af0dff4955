package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dias221467/Veritas_Network/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserStore is the identity storage contract.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	TouchLastActive(ctx context.Context, id primitive.ObjectID) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)
}

// UserService encapsulates the business logic for user accounts.
type UserService struct {
	store UserStore
}

// NewUserService creates a new instance of UserService.
func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

// RegisterUser registers a new user after hashing their password.
func (s *UserService) RegisterUser(ctx context.Context, name, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("missing required user fields")
	}
	if !emailRegex.MatchString(email) {
		logrus.WithField("email", email).Warn("Invalid email format during registration")
		return nil, fmt.Errorf("invalid email format")
	}

	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logrus.WithField("email", email).Warn("Email already in use")
		return nil, fmt.Errorf("email already in use")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:           name,
		Email:          email,
		HashedPassword: string(hashedPwd),
		Role:           "user",
	}

	created, err := s.store.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"userID": created.ID.Hex(),
		"role":   created.Role,
	}).Info("User registered successfully")
	return created, nil
}

// AuthenticateUser verifies the email and password and returns the user if
// credentials are valid.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		logrus.WithField("email", email).Warn("User not found")
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Invalid credentials")
		return nil, fmt.Errorf("invalid credentials")
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}

	user, err := s.store.GetUserByID(ctx, objID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}
	return user, nil
}

// UpdateProfile applies the profile fields a user may change about
// themselves. Nil map entries are skipped; unknown fields are ignored.
func (s *UserService) UpdateProfile(ctx context.Context, id string, fields map[string]string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid user ID: %v", err)
	}

	updates := make(map[string]interface{})
	for _, key := range []string{"name", "picture", "description", "phone"} {
		if value, present := fields[key]; present {
			updates[key] = value
		}
	}
	if len(updates) == 0 {
		return fmt.Errorf("no profile fields to update")
	}

	if err := s.store.UpdateUser(ctx, objID, updates); err != nil {
		return err
	}
	logrus.WithField("userID", id).Info("Profile updated")
	return nil
}

// TouchLastActive records user activity, best effort.
func (s *UserService) TouchLastActive(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid user ID: %v", err)
	}
	return s.store.TouchLastActive(ctx, objID)
}

// GetAllUsers lists every account. Admin only; enforced at the route level.
func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.store.GetAllUsers(ctx)
}
