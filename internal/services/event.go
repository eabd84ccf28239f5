package services

import (
	"context"
	"fmt"
	"time"

	"eventboard-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/markusmobius/go-dateparser"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// EventService handles event-related business logic. References to users are
// resolved on read; nothing checks them on write.
type EventService struct {
	events     EventStore
	users      UserStore
	images     *ImageService
	notifier   Notifier
	validate   *validator.Validate
	displayLoc *time.Location
	now        func() time.Time
}

// NewEventService creates a new event service. List views render dates in
// displayLoc, or the local zone when it is nil.
func NewEventService(events EventStore, users UserStore, images *ImageService, notifier Notifier, displayLoc *time.Location) *EventService {
	if displayLoc == nil {
		displayLoc = time.Local
	}
	return &EventService{
		events:     events,
		users:      users,
		images:     images,
		notifier:   notifier,
		validate:   newValidator(),
		displayLoc: displayLoc,
		now:        time.Now,
	}
}

// Create ingests the image, validates the fields and stores the event.
func (s *EventService) Create(ctx context.Context, fields models.EventFields, upload *Upload) (*models.Event, error) {
	image, err := s.images.Ingest(ctx, upload)
	if err != nil {
		return nil, err
	}
	if err := validateFields(s.validate, "Event", fields); err != nil {
		return nil, err
	}
	date, err := parseEventDate(fields.Date, s.now)
	if err != nil {
		return nil, err
	}

	participants := fields.Participants
	if participants == nil {
		participants = []string{}
	}
	event := &models.Event{
		EventName:    fields.EventName,
		Creator:      fields.Creator,
		Participants: participants,
		Description:  fields.Description,
		Location:     fields.Location,
		Image:        image,
		Date:         date,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	log.Ctx(ctx).Info().
		Str("event_id", event.ID).
		Int("participants", len(event.Participants)).
		Msg("Event created")
	notify(s.notifier, models.ChangeEventCreated, event.ID, s.now)
	return event, nil
}

// Update overwrites name, creator, location, description and participants.
// The date is kept; the image is replaced only when an upload is given.
func (s *EventService) Update(ctx context.Context, id string, fields models.EventFields, upload *Upload) (*models.Event, error) {
	image, err := s.images.ingestOptional(ctx, upload)
	if err != nil {
		return nil, err
	}

	event, err := s.events.Update(ctx, id, fields, image)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	notify(s.notifier, models.ChangeEventUpdated, event.ID, s.now)
	return event, nil
}

// Delete removes an event
func (s *EventService) Delete(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.events.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete event: %w", err)
	}

	log.Ctx(ctx).Info().Str("event_id", event.ID).Msg("Event deleted")
	notify(s.notifier, models.ChangeEventDeleted, event.ID, s.now)
	return event, nil
}

// GetRaw retrieves the stored event without resolving references
func (s *EventService) GetRaw(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// Get retrieves an event with creator and participants resolved to names
func (s *EventService) Get(ctx context.Context, id string) (*models.EventDetail, error) {
	event, err := s.GetRaw(ctx, id)
	if err != nil {
		return nil, err
	}

	byID, err := s.lookupUsers(ctx, referencedUserIDs(event))
	if err != nil {
		return nil, err
	}

	detail := newEventDetail(event)
	detail.Creator = creatorRef(event, byID)
	detail.Participants = participantRefs(event, byID, false)
	return detail, nil
}

// GetExpanded retrieves an event with the creator resolved to a name and the
// participants resolved to name and image.
func (s *EventService) GetExpanded(ctx context.Context, id string) (*models.EventDetail, error) {
	event, err := s.GetRaw(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := newEventDetail(event)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if event.Creator == nil {
			return nil
		}
		byID, err := s.lookupUsers(gctx, []string{*event.Creator})
		if err != nil {
			return err
		}
		detail.Creator = creatorRef(event, byID)
		return nil
	})
	g.Go(func() error {
		byID, err := s.lookupUsers(gctx, event.Participants)
		if err != nil {
			return err
		}
		detail.Participants = participantRefs(event, byID, true)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

// List returns every event as a summary
func (s *EventService) List(ctx context.Context) ([]models.EventSummary, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return s.summarize(ctx, events)
}

// ListByCreator returns the events created by creatorID
func (s *EventService) ListByCreator(ctx context.Context, creatorID string) ([]models.EventSummary, error) {
	events, err := s.events.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events by creator: %w", err)
	}
	return s.summarize(ctx, events)
}

// ListByParticipant returns the events whose participants include participantID
func (s *EventService) ListByParticipant(ctx context.Context, participantID string) ([]models.EventSummary, error) {
	events, err := s.events.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events by participant: %w", err)
	}
	return s.summarize(ctx, events)
}

// summarize resolves the references of all events with a single user lookup.
func (s *EventService) summarize(ctx context.Context, events []*models.Event) ([]models.EventSummary, error) {
	byID, err := s.lookupUsers(ctx, referencedUserIDs(events...))
	if err != nil {
		return nil, err
	}

	summaries := make([]models.EventSummary, 0, len(events))
	for _, e := range events {
		summaries = append(summaries, models.EventSummary{
			ID:           e.ID,
			EventName:    e.EventName,
			Creator:      creatorRef(e, byID),
			Participants: participantRefs(e, byID, false),
			Description:  e.Description,
			Location:     e.Location,
			Image:        e.Image.Normalize(),
			Date:         models.FormatDisplayDate(e.Date, s.displayLoc),
		})
	}
	return summaries, nil
}

func (s *EventService) lookupUsers(ctx context.Context, ids []string) (map[string]*models.User, error) {
	byID := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve users: %w", err)
	}
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

// referencedUserIDs collects the distinct creator and participant ids.
func referencedUserIDs(events ...*models.Event) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, e := range events {
		if e.Creator != nil {
			add(*e.Creator)
		}
		for _, p := range e.Participants {
			add(p)
		}
	}
	return ids
}

// creatorRef is nil when the creator no longer exists.
func creatorRef(e *models.Event, byID map[string]*models.User) *models.UserRef {
	if e.Creator == nil {
		return nil
	}
	u, ok := byID[*e.Creator]
	if !ok {
		return nil
	}
	return &models.UserRef{ID: u.ID, Name: u.Name}
}

// participantRefs drops participants that no longer exist and keeps
// duplicates in order.
func participantRefs(e *models.Event, byID map[string]*models.User, withImage bool) []models.UserRef {
	refs := make([]models.UserRef, 0, len(e.Participants))
	for _, id := range e.Participants {
		u, ok := byID[id]
		if !ok {
			continue
		}
		ref := models.UserRef{ID: u.ID, Name: u.Name}
		if withImage {
			img := u.Image
			ref.Image = &img
		}
		refs = append(refs, ref)
	}
	return refs
}

func newEventDetail(e *models.Event) *models.EventDetail {
	return &models.EventDetail{
		ID:           e.ID,
		EventName:    e.EventName,
		Description:  e.Description,
		Location:     e.Location,
		Participants: []models.UserRef{},
		Image:        e.Image,
		Date:         e.Date,
	}
}

// parseEventDate accepts RFC 3339, a bare YYYY-MM-DD (read as UTC midnight)
// or a natural-language date. Empty input means now.
func parseEventDate(raw string, now func() time.Time) (time.Time, error) {
	if raw == "" {
		return now(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}

	cfg := &dateparser.Configuration{CurrentTime: now()}
	parsed, err := dateparser.Parse(cfg, raw)
	if err != nil || parsed.Time.IsZero() {
		return time.Time{}, NewCastError("Event", "date", "date", raw)
	}
	return parsed.Time, nil
}
