package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"eventboard-backend/internal/models"
	"eventboard-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Create(t *testing.T) {
	env := newTestEnv(t)

	user := env.createUser(t, "Ana")

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Ana", *user.Name)
	assert.Equal(t, 30.0, *user.Age)
	assert.True(t, strings.HasPrefix(user.Image.Inline(), models.InlineImagePrefix))
	assert.Empty(t, user.Posts)
	assert.Equal(t, []models.ChangeType{models.ChangeUserCreated}, env.notifier.types())
}

func TestUserService_CreateRequiresImageBeforeFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.Create(context.Background(), models.UserFields{}, nil)
	assert.ErrorIs(t, err, ErrMissingImage)

	users, err := env.users.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.Create(context.Background(), models.UserFields{
		Name: strPtr("Ana"),
		Age:  floatPtr(0),
	}, jpegUpload("a.jpg", "x"))

	require.ErrorIs(t, err, ErrMissingRequiredField)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "User", verr.Model)
	assert.Equal(t, []string{"email"}, verr.FieldNames(), "age 0 is a value")
	assert.Empty(t, env.notifier.types())
}

func TestUserService_UpdateOverwrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "Ana")

	updated, err := env.users.Update(ctx, user.ID, models.UserFields{Name: strPtr("Ana Maria")}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Ana Maria", *updated.Name)
	assert.Nil(t, updated.Email, "omitted fields are cleared")
	assert.Nil(t, updated.Age)
	assert.Equal(t, user.Image, updated.Image, "image kept without upload")

	replaced, err := env.users.Update(ctx, user.ID, models.UserFields{}, jpegUpload("b.jpg", "new"))
	require.NoError(t, err)
	assert.Equal(t, models.EncodeInline([]byte("new")), replaced.Image)

	assert.Equal(t, []models.ChangeType{
		models.ChangeUserCreated, models.ChangeUserUpdated, models.ChangeUserUpdated,
	}, env.notifier.types())
}

func TestUserService_MissingUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = env.users.Update(ctx, "missing", models.UserFields{}, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = env.users.Delete(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, env.notifier.types())
}

func TestUserService_DeleteLeavesEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.createUser(t, "Ana")
	event := env.createEvent(t, "Meetup", ana.ID, ana.ID)

	deleted, err := env.users.Delete(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, deleted.ID)

	raw, err := env.events.GetRaw(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, *raw.Creator)
	assert.Equal(t, []string{ana.ID}, raw.Participants)
}

func TestUserService_ListOrder(t *testing.T) {
	env := newTestEnv(t)
	a := env.createUser(t, "Ana")
	b := env.createUser(t, "Bo")

	users, err := env.users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, a.ID, users[0].ID)
	assert.Equal(t, b.ID, users[1].ID)
}
