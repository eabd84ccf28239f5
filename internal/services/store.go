package services

import (
	"context"
	"time"

	"eventboard-backend/internal/models"
)

// UserStore persists users. Misses are reported as repository.ErrNotFound.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id string, fields models.UserFields, image *models.Image) (*models.User, error)
	Delete(ctx context.Context, id string) (*models.User, error)
}

// EventStore persists events. Misses are reported as repository.ErrNotFound.
type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*models.Event, error)
	ListByParticipant(ctx context.Context, participantID string) ([]*models.Event, error)
	Update(ctx context.Context, id string, fields models.EventFields, image *models.Image) (*models.Event, error)
	Delete(ctx context.Context, id string) (*models.Event, error)
}

// Notifier receives a Change after every successful write.
type Notifier interface {
	Notify(change models.Change)
}

func notify(n Notifier, typ models.ChangeType, id string, now func() time.Time) {
	if n == nil {
		return
	}
	n.Notify(models.Change{Type: typ, ID: id, At: now()})
}
