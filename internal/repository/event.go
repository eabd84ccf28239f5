package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eventboard-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, event_name, creator, participants, description, location, image, date`

// EventRepository handles database operations for events
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create creates a new event and assigns its id
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Participants == nil {
		event.Participants = []string{}
	}
	if event.Date.IsZero() {
		event.Date = time.Now()
	}

	image, err := json.Marshal(event.Image)
	if err != nil {
		return fmt.Errorf("failed to encode event image: %w", err)
	}

	query := `
		INSERT INTO events (id, event_name, creator, participants, description, location, image, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.Exec(ctx, query,
		event.ID, event.EventName, event.Creator, event.Participants,
		event.Description, event.Location, image, event.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	event, err := scanEvent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// List retrieves all events in insertion order
func (r *EventRepository) List(ctx context.Context) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY seq`
	return r.queryEvents(ctx, query)
}

// ListByCreator retrieves events created by the given user
func (r *EventRepository) ListByCreator(ctx context.Context, creatorID string) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE creator = $1 ORDER BY seq`
	return r.queryEvents(ctx, query, creatorID)
}

// ListByParticipant retrieves events whose participants include the given user
func (r *EventRepository) ListByParticipant(ctx context.Context, participantID string) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE $1 = ANY(participants) ORDER BY seq`
	return r.queryEvents(ctx, query, participantID)
}

// Update overwrites the editable fields, and the image when one is given.
// The event date is never changed.
func (r *EventRepository) Update(ctx context.Context, id string, fields models.EventFields, image *models.Image) (*models.Event, error) {
	var imageJSON []byte
	if image != nil {
		encoded, err := json.Marshal(*image)
		if err != nil {
			return nil, fmt.Errorf("failed to encode event image: %w", err)
		}
		imageJSON = encoded
	}
	participants := fields.Participants
	if participants == nil {
		participants = []string{}
	}

	query := `
		UPDATE events
		SET event_name = $2, creator = $3, location = $4, description = $5,
			participants = $6, image = COALESCE($7, image)
		WHERE id = $1
		RETURNING ` + eventColumns
	event, err := scanEvent(r.db.QueryRow(ctx, query,
		id, fields.EventName, fields.Creator, fields.Location, fields.Description,
		participants, imageJSON,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

// Delete deletes an event by ID and returns the removed record
func (r *EventRepository) Delete(ctx context.Context, id string) (*models.Event, error) {
	query := `DELETE FROM events WHERE id = $1 RETURNING ` + eventColumns
	event, err := scanEvent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to delete event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*models.Event, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	events := []*models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var event models.Event
	var image []byte
	err := row.Scan(
		&event.ID, &event.EventName, &event.Creator, &event.Participants,
		&event.Description, &event.Location, &image, &event.Date,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeImage(image, &event.Image); err != nil {
		return nil, err
	}
	if event.Participants == nil {
		event.Participants = []string{}
	}
	return &event, nil
}
