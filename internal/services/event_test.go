package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventboard-backend/internal/models"
	"eventboard-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_CreateAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.createUser(t, "Ana")

	event := env.createEvent(t, "Meetup", ana.ID)
	assert.Empty(t, event.Participants)
	assert.False(t, event.Date.IsZero())

	list, err := env.events.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got := list[0]
	assert.Equal(t, event.ID, got.ID)
	require.NotNil(t, got.Creator)
	assert.Equal(t, ana.ID, got.Creator.ID)
	assert.Equal(t, "Ana", *got.Creator.Name)
	assert.Nil(t, got.Creator.Image)
	assert.Equal(t, event.Image.Inline(), got.Image)
	assert.Equal(t, models.FormatDisplayDate(event.Date, time.UTC), got.Date)
	assert.Regexp(t, `^[A-Z][a-z]{2} [A-Z][a-z]{2} \d{2} \d{4}$`, got.Date)
}

func TestEventService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.events.Create(ctx, models.EventFields{EventName: strPtr("Meetup")}, nil)
	assert.ErrorIs(t, err, ErrMissingImage)

	_, err = env.events.Create(ctx, models.EventFields{EventName: strPtr("Meetup")}, jpegUpload("a.jpg", "x"))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"creator", "description", "location"}, verr.FieldNames())
}

func TestEventService_CreateAcceptsUnknownReferences(t *testing.T) {
	env := newTestEnv(t)

	event := env.createEvent(t, "Ghost", "nobody", "nobody-else")
	assert.Equal(t, "nobody", *event.Creator)
	assert.Equal(t, []string{"nobody-else"}, event.Participants)
}

func TestEventService_CreateDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fields := models.EventFields{
		EventName:   strPtr("Meetup"),
		Creator:     strPtr("c"),
		Description: strPtr("d"),
		Location:    strPtr("l"),
	}

	fields.Date = "2023-09-15"
	event, err := env.events.Create(ctx, fields, jpegUpload("a.jpg", "x"))
	require.NoError(t, err)
	assert.True(t, time.Date(2023, 9, 15, 0, 0, 0, 0, time.UTC).Equal(event.Date))

	fields.Date = "2023-09-15T18:30:00+02:00"
	event, err = env.events.Create(ctx, fields, jpegUpload("a.jpg", "x"))
	require.NoError(t, err)
	assert.True(t, time.Date(2023, 9, 15, 16, 30, 0, 0, time.UTC).Equal(event.Date))

	fields.Date = "definitely not a date"
	_, err = env.events.Create(ctx, fields, jpegUpload("a.jpg", "x"))
	assert.ErrorIs(t, err, ErrMissingRequiredField)
}

func TestParseEventDate(t *testing.T) {
	now := func() time.Time { return time.Date(2023, 9, 15, 10, 0, 0, 0, time.UTC) }

	got, err := parseEventDate("", now)
	require.NoError(t, err)
	assert.Equal(t, now(), got)

	got, err = parseEventDate("September 20, 2023", now)
	require.NoError(t, err)
	assert.Equal(t, 2023, got.Year())
	assert.Equal(t, time.September, got.Month())
	assert.Equal(t, 20, got.Day())
}

func TestEventService_PopulationToleratesDanglingReferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.createUser(t, "Ana")
	bo := env.createUser(t, "Bo")
	cy := env.createUser(t, "Cy")

	event := env.createEvent(t, "Meetup", cy.ID, bo.ID, cy.ID, bo.ID, ana.ID)
	_, err := env.users.Delete(ctx, cy.ID)
	require.NoError(t, err)

	detail, err := env.events.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Creator, "deleted creator populates to null")

	var names []string
	for _, p := range detail.Participants {
		names = append(names, *p.Name)
		assert.Nil(t, p.Image)
	}
	assert.Equal(t, []string{"Bo", "Bo", "Ana"}, names, "dangling dropped, duplicates kept")
}

func TestEventService_GetExpanded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.createUser(t, "Ana")
	bo := env.createUser(t, "Bo")
	event := env.createEvent(t, "Meetup", ana.ID, bo.ID)

	detail, err := env.events.GetExpanded(ctx, event.ID)
	require.NoError(t, err)

	require.NotNil(t, detail.Creator)
	assert.Equal(t, "Ana", *detail.Creator.Name)
	assert.Nil(t, detail.Creator.Image)

	require.Len(t, detail.Participants, 1)
	assert.Equal(t, "Bo", *detail.Participants[0].Name)
	require.NotNil(t, detail.Participants[0].Image)
	assert.Equal(t, bo.Image, *detail.Participants[0].Image)
	assert.Equal(t, event.Image, detail.Image)

	_, err = env.events.GetExpanded(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEventService_ListFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.createUser(t, "Ana")
	bo := env.createUser(t, "Bo")

	meetup := env.createEvent(t, "Meetup", ana.ID, bo.ID)
	env.createEvent(t, "Solo", bo.ID)

	byCreator, err := env.events.ListByCreator(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, byCreator, 1)
	assert.Equal(t, meetup.ID, byCreator[0].ID)

	byParticipant, err := env.events.ListByParticipant(ctx, bo.ID)
	require.NoError(t, err)
	require.Len(t, byParticipant, 1)
	assert.Equal(t, meetup.ID, byParticipant[0].ID)
	require.Len(t, byParticipant[0].Participants, 1)
	assert.Equal(t, "Bo", *byParticipant[0].Participants[0].Name)

	none, err := env.events.ListByParticipant(ctx, ana.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEventService_ListNormalizesLegacyImages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	legacy := &models.Event{EventName: strPtr("Old"), Image: models.LegacyBufferImage([]byte{1, 2, 3})}
	require.NoError(t, env.store.Events().Create(ctx, legacy))

	list, err := env.events.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "AQID", list[0].Image)
	assert.Nil(t, list[0].Creator)
}

func TestEventService_DisplayTimezone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tokyo := time.FixedZone("JST", 9*3600)
	env.events.displayLoc = tokyo

	late := &models.Event{EventName: strPtr("Late"), Date: time.Date(2023, 9, 15, 20, 0, 0, 0, time.UTC)}
	require.NoError(t, env.store.Events().Create(ctx, late))

	list, err := env.events.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Sat Sep 16 2023", list[0].Date)
}

func TestEventService_UpdateOverwrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.createUser(t, "Ana")
	bo := env.createUser(t, "Bo")
	event := env.createEvent(t, "Meetup", ana.ID, bo.ID)

	updated, err := env.events.Update(ctx, event.ID, models.EventFields{
		EventName: strPtr("Meetup 2"),
		Date:      "2001-01-01",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Meetup 2", *updated.EventName)
	assert.Nil(t, updated.Creator)
	assert.Nil(t, updated.Location)
	assert.Empty(t, updated.Participants)
	assert.True(t, event.Date.Equal(updated.Date), "date untouched by update")
	assert.Equal(t, event.Image, updated.Image)

	_, err = env.events.Update(ctx, "missing", models.EventFields{}, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEventService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.createUser(t, "Ana")
	event := env.createEvent(t, "Meetup", ana.ID)

	deleted, err := env.events.Delete(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, deleted.ID)

	_, err = env.events.Delete(ctx, event.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	user, err := env.users.Get(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, user.ID)

	assert.Equal(t, []models.ChangeType{
		models.ChangeUserCreated, models.ChangeEventCreated, models.ChangeEventDeleted,
	}, env.notifier.types())
}
