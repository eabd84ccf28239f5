package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"eventboard-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, age, image, posts`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user and assigns its id
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Posts == nil {
		user.Posts = []string{}
	}

	image, err := json.Marshal(user.Image)
	if err != nil {
		return fmt.Errorf("failed to encode user image: %w", err)
	}

	query := `
		INSERT INTO users (id, name, email, age, image, posts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.Exec(ctx, query, user.ID, user.Name, user.Email, user.Age, image, user.Posts)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByIDs retrieves every user whose id is in ids. Unknown ids are skipped.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1) ORDER BY seq`
	return r.queryUsers(ctx, query, ids)
}

// List retrieves all users in insertion order
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY seq`
	return r.queryUsers(ctx, query)
}

// Update overwrites name, email and age, and the image when one is given
func (r *UserRepository) Update(ctx context.Context, id string, fields models.UserFields, image *models.Image) (*models.User, error) {
	var imageJSON []byte
	if image != nil {
		encoded, err := json.Marshal(*image)
		if err != nil {
			return nil, fmt.Errorf("failed to encode user image: %w", err)
		}
		imageJSON = encoded
	}

	query := `
		UPDATE users
		SET name = $2, email = $3, age = $4, image = COALESCE($5, image)
		WHERE id = $1
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, id, fields.Name, fields.Email, fields.Age, imageJSON))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete deletes a user by ID and returns the removed record
func (r *UserRepository) Delete(ctx context.Context, id string) (*models.User, error) {
	query := `DELETE FROM users WHERE id = $1 RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var image []byte
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Age, &image, &user.Posts); err != nil {
		return nil, err
	}
	if err := decodeImage(image, &user.Image); err != nil {
		return nil, err
	}
	if user.Posts == nil {
		user.Posts = []string{}
	}
	return &user, nil
}

func decodeImage(raw []byte, dst *models.Image) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode stored image: %w", err)
	}
	return nil
}
