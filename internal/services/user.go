package services

import (
	"context"
	"fmt"
	"time"

	"eventboard-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// UserService handles user-related business logic
type UserService struct {
	users    UserStore
	images   *ImageService
	notifier Notifier
	validate *validator.Validate
	now      func() time.Time
}

// NewUserService creates a new user service. notifier may be nil.
func NewUserService(users UserStore, images *ImageService, notifier Notifier) *UserService {
	return &UserService{
		users:    users,
		images:   images,
		notifier: notifier,
		validate: newValidator(),
		now:      time.Now,
	}
}

// Create ingests the image first and then validates the scalar fields, so a
// request missing both is rejected for the image.
func (s *UserService) Create(ctx context.Context, fields models.UserFields, upload *Upload) (*models.User, error) {
	image, err := s.images.Ingest(ctx, upload)
	if err != nil {
		return nil, err
	}
	if err := validateFields(s.validate, "User", fields); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:  fields.Name,
		Email: fields.Email,
		Age:   fields.Age,
		Image: image,
		Posts: []string{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Ctx(ctx).Info().Str("user_id", user.ID).Msg("User created")
	notify(s.notifier, models.ChangeUserCreated, user.ID, s.now)
	return user, nil
}

// Update overwrites name, email and age. The image is replaced only when an
// upload is given.
func (s *UserService) Update(ctx context.Context, id string, fields models.UserFields, upload *Upload) (*models.User, error) {
	image, err := s.images.ingestOptional(ctx, upload)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Update(ctx, id, fields, image)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	notify(s.notifier, models.ChangeUserUpdated, user.ID, s.now)
	return user, nil
}

// Delete removes a user. Events referencing it are left untouched.
func (s *UserService) Delete(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	log.Ctx(ctx).Info().Str("user_id", user.ID).Msg("User deleted")
	notify(s.notifier, models.ChangeUserDeleted, user.ID, s.now)
	return user, nil
}

// Get retrieves a user by ID
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// List retrieves all users
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
