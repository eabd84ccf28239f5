package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"eventboard-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	sharedOnce    sync.Once
	sharedInitErr error
	sharedPool    *pgxpool.Pool
)

func TestMain(m *testing.M) {
	code := m.Run()
	if sharedPool != nil {
		sharedPool.Close()
	}
	os.Exit(code)
}

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests skipped in short mode")
	}

	sharedOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		container, err := postgres.Run(ctx,
			"docker.io/postgres:16-alpine",
			postgres.WithDatabase("eventboard"),
			postgres.WithUsername("eventboard"),
			postgres.WithPassword("eventboard"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			sharedInitErr = err
			return
		}

		dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedInitErr = err
			return
		}
		if err := MigrateUp(dbURL); err != nil {
			sharedInitErr = err
			return
		}

		sharedPool, sharedInitErr = pgxpool.New(ctx, dbURL)
	})
	require.NoError(t, sharedInitErr)

	_, err := sharedPool.Exec(context.Background(), `TRUNCATE users, events`)
	require.NoError(t, err)
	return sharedPool
}

func strPtr(s string) *string { return &s }

func TestUserRepository_Lifecycle(t *testing.T) {
	pool := setupPostgres(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	age := 28.0
	user := &models.User{
		Name:  strPtr("Ana"),
		Email: strPtr("ana@example.com"),
		Age:   &age,
		Image: models.InlineImage("data:image/jpeg;base64,AAEC"),
	}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", *got.Name)
	assert.Equal(t, "data:image/jpeg;base64,AAEC", got.Image.Inline())
	assert.Empty(t, got.Posts)

	updated, err := repo.Update(ctx, user.ID, models.UserFields{Name: strPtr("Ana B")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ana B", *updated.Name)
	assert.Nil(t, updated.Email)
	assert.Nil(t, updated.Age)
	assert.Equal(t, user.Image, updated.Image, "image kept when none is supplied")

	deleted, err := repo.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, deleted.ID)

	_, err = repo.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Delete(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_LegacyImage(t *testing.T) {
	pool := setupPostgres(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	user := &models.User{Name: strPtr("Old"), Image: models.LegacyBufferImage([]byte{1, 2, 3})}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ImageLegacyBuffer, got.Image.Kind())
	assert.Equal(t, "AQID", got.Image.Normalize())
}

func TestEventRepository_Filters(t *testing.T) {
	pool := setupPostgres(t)
	users := NewUserRepository(pool)
	events := NewEventRepository(pool)
	ctx := context.Background()

	ana := &models.User{Name: strPtr("Ana")}
	bo := &models.User{Name: strPtr("Bo")}
	require.NoError(t, users.Create(ctx, ana))
	require.NoError(t, users.Create(ctx, bo))

	byUsers, err := users.GetByIDs(ctx, []string{bo.ID, "missing", ana.ID})
	require.NoError(t, err)
	require.Len(t, byUsers, 2)
	assert.Equal(t, ana.ID, byUsers[0].ID)

	meetup := &models.Event{
		EventName:    strPtr("Meetup"),
		Creator:      &ana.ID,
		Participants: []string{bo.ID},
		Image:        models.InlineImage("data:image/jpeg;base64,AA=="),
	}
	solo := &models.Event{EventName: strPtr("Solo"), Creator: &bo.ID}
	require.NoError(t, events.Create(ctx, meetup))
	require.NoError(t, events.Create(ctx, solo))
	assert.False(t, meetup.Date.IsZero())

	byCreator, err := events.ListByCreator(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, byCreator, 1)
	assert.Equal(t, meetup.ID, byCreator[0].ID)

	byParticipant, err := events.ListByParticipant(ctx, bo.ID)
	require.NoError(t, err)
	require.Len(t, byParticipant, 1)
	assert.Equal(t, meetup.ID, byParticipant[0].ID)

	none, err := events.ListByParticipant(ctx, ana.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := events.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, meetup.ID, all[0].ID)
}

func TestEventRepository_UpdateKeepsDate(t *testing.T) {
	pool := setupPostgres(t)
	events := NewEventRepository(pool)
	ctx := context.Background()

	date := time.Date(2023, 9, 15, 12, 0, 0, 0, time.UTC)
	event := &models.Event{
		EventName: strPtr("Meetup"),
		Image:     models.InlineImage("data:image/jpeg;base64,AA=="),
		Date:      date,
	}
	require.NoError(t, events.Create(ctx, event))

	updated, err := events.Update(ctx, event.ID, models.EventFields{
		EventName:    strPtr("Meetup 2"),
		Participants: []string{"a", "a"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Meetup 2", *updated.EventName)
	assert.Nil(t, updated.Location)
	assert.Equal(t, []string{"a", "a"}, updated.Participants)
	assert.True(t, date.Equal(updated.Date))
	assert.Equal(t, event.Image, updated.Image)

	_, err = events.Update(ctx, "missing", models.EventFields{}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
