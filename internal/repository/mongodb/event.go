package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventboard-backend/internal/models"
	"eventboard-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepository handles the events collection
type EventRepository struct {
	coll *mongo.Collection
}

// Create inserts an event and assigns a new ObjectID
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	creator, err := parseOptionalID(event.Creator)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	participants, err := parseIDs(event.Participants)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	if event.Date.IsZero() {
		event.Date = time.Now()
	}

	oid := primitive.NewObjectID()
	doc := bson.D{
		{Key: "_id", Value: oid},
		{Key: "eventName", Value: event.EventName},
		{Key: "creator", Value: creator},
		{Key: "participants", Value: participants},
		{Key: "description", Value: event.Description},
		{Key: "location", Value: event.Location},
		{Key: "image", Value: encodeImage(event.Image)},
		{Key: "date", Value: event.Date},
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	event.ID = oid.Hex()
	event.Participants = hexIDs(participants)
	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc eventDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("event %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return doc.toModel()
}

// List retrieves all events in natural order
func (r *EventRepository) List(ctx context.Context) ([]*models.Event, error) {
	return r.find(ctx, bson.M{})
}

// ListByCreator retrieves events created by the given user
func (r *EventRepository) ListByCreator(ctx context.Context, creatorID string) ([]*models.Event, error) {
	oid, err := parseID(creatorID)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"creator": oid})
}

// ListByParticipant retrieves events whose participants include the given user
func (r *EventRepository) ListByParticipant(ctx context.Context, participantID string) ([]*models.Event, error) {
	oid, err := parseID(participantID)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, bson.M{"participants": oid})
}

// Update overwrites the editable fields, and the image when one is given
func (r *EventRepository) Update(ctx context.Context, id string, fields models.EventFields, image *models.Image) (*models.Event, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	creator, err := parseOptionalID(fields.Creator)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	participants, err := parseIDs(fields.Participants)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	set := bson.D{
		{Key: "eventName", Value: fields.EventName},
		{Key: "creator", Value: creator},
		{Key: "location", Value: fields.Location},
		{Key: "description", Value: fields.Description},
		{Key: "participants", Value: participants},
	}
	if image != nil {
		set = append(set, bson.E{Key: "image", Value: encodeImage(*image)})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc eventDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("event %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return doc.toModel()
}

// Delete deletes an event by ID and returns the removed document
func (r *EventRepository) Delete(ctx context.Context, id string) (*models.Event, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc eventDoc
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("event %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to delete event: %w", err)
	}
	return doc.toModel()
}

func (r *EventRepository) find(ctx context.Context, filter any) ([]*models.Event, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	var docs []eventDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	events := make([]*models.Event, 0, len(docs))
	for i := range docs {
		event, err := docs[i].toModel()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
