// Package memory keeps users and events in process memory. It backs the
// memory:// store URI and the service tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"eventboard-backend/internal/models"
	"eventboard-backend/internal/repository"

	"github.com/google/uuid"
)

// Store holds both collections behind one lock.
type Store struct {
	mu         sync.RWMutex
	users      map[string]*models.User
	userOrder  []string
	events     map[string]*models.Event
	eventOrder []string
}

// New creates an empty store
func New() *Store {
	return &Store{
		users:  make(map[string]*models.User),
		events: make(map[string]*models.Event),
	}
}

// Users returns the user collection
func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

// Events returns the event collection
func (s *Store) Events() *EventRepository {
	return &EventRepository{store: s}
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// UserRepository is the in-memory user collection
type UserRepository struct {
	store *Store
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if _, exists := s.users[user.ID]; exists {
		return fmt.Errorf("failed to create user: duplicate id %s", user.ID)
	}
	if user.Posts == nil {
		user.Posts = []string{}
	}
	s.users[user.ID] = cloneUser(user)
	s.userOrder = append(s.userOrder, user.ID)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	return cloneUser(user), nil
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := []*models.User{}
	for _, id := range s.userOrder {
		if slices.Contains(ids, id) {
			users = append(users, cloneUser(s.users[id]))
		}
	}
	return users, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		users = append(users, cloneUser(s.users[id]))
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, fields models.UserFields, image *models.Image) (*models.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	user.Name = fields.Name
	user.Email = fields.Email
	user.Age = fields.Age
	if image != nil {
		user.Image = *image
	}
	return cloneUser(user), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) (*models.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	delete(s.users, id)
	s.userOrder = slices.DeleteFunc(s.userOrder, func(v string) bool { return v == id })
	return user, nil
}

// EventRepository is the in-memory event collection
type EventRepository struct {
	store *Store
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if _, exists := s.events[event.ID]; exists {
		return fmt.Errorf("failed to create event: duplicate id %s", event.ID)
	}
	if event.Participants == nil {
		event.Participants = []string{}
	}
	if event.Date.IsZero() {
		event.Date = time.Now()
	}
	s.events[event.ID] = cloneEvent(event)
	s.eventOrder = append(s.eventOrder, event.ID)
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, repository.ErrNotFound)
	}
	return cloneEvent(event), nil
}

func (r *EventRepository) List(ctx context.Context) ([]*models.Event, error) {
	return r.filter(func(*models.Event) bool { return true }), nil
}

func (r *EventRepository) ListByCreator(ctx context.Context, creatorID string) ([]*models.Event, error) {
	return r.filter(func(e *models.Event) bool {
		return e.Creator != nil && *e.Creator == creatorID
	}), nil
}

func (r *EventRepository) ListByParticipant(ctx context.Context, participantID string) ([]*models.Event, error) {
	return r.filter(func(e *models.Event) bool {
		return slices.Contains(e.Participants, participantID)
	}), nil
}

func (r *EventRepository) Update(ctx context.Context, id string, fields models.EventFields, image *models.Image) (*models.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, repository.ErrNotFound)
	}
	event.EventName = fields.EventName
	event.Creator = fields.Creator
	event.Location = fields.Location
	event.Description = fields.Description
	event.Participants = slices.Clone(fields.Participants)
	if event.Participants == nil {
		event.Participants = []string{}
	}
	if image != nil {
		event.Image = *image
	}
	return cloneEvent(event), nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) (*models.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, repository.ErrNotFound)
	}
	delete(s.events, id)
	s.eventOrder = slices.DeleteFunc(s.eventOrder, func(v string) bool { return v == id })
	return event, nil
}

func (r *EventRepository) filter(keep func(*models.Event) bool) []*models.Event {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := []*models.Event{}
	for _, id := range s.eventOrder {
		if event := s.events[id]; keep(event) {
			events = append(events, cloneEvent(event))
		}
	}
	return events
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Posts = slices.Clone(u.Posts)
	return &c
}

func cloneEvent(e *models.Event) *models.Event {
	c := *e
	c.Participants = slices.Clone(e.Participants)
	return &c
}
