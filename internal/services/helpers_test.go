package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"eventboard-backend/internal/models"
	"eventboard-backend/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// recordingNotifier collects every change it receives.
type recordingNotifier struct {
	mu      sync.Mutex
	changes []models.Change
}

func (n *recordingNotifier) Notify(change models.Change) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
}

func (n *recordingNotifier) types() []models.ChangeType {
	n.mu.Lock()
	defer n.mu.Unlock()
	types := make([]models.ChangeType, 0, len(n.changes))
	for _, c := range n.changes {
		types = append(types, c.Type)
	}
	return types
}

// failingStager fails every Stage call.
type failingStager struct{}

func (failingStager) Stage(context.Context, string, io.Reader) (string, error) {
	return "", errors.New("disk full")
}

func (failingStager) Read(context.Context, string) ([]byte, error) { return nil, nil }

func (failingStager) Remove(context.Context, string) error { return nil }

type testEnv struct {
	store    *memory.Store
	images   *ImageService
	users    *UserService
	events   *EventService
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	stager, err := NewDiskStager(t.TempDir())
	require.NoError(t, err)

	store := memory.New()
	images := NewImageService(stager, false)
	notifier := &recordingNotifier{}
	return &testEnv{
		store:    store,
		images:   images,
		users:    NewUserService(store.Users(), images, notifier),
		events:   NewEventService(store.Events(), store.Users(), images, notifier, time.UTC),
		notifier: notifier,
	}
}

func jpegUpload(name string, data string) *Upload {
	return &Upload{Filename: name, ContentType: "image/jpeg", File: strings.NewReader(data)}
}

func (e *testEnv) createUser(t *testing.T, name string) *models.User {
	t.Helper()
	user, err := e.users.Create(context.Background(), models.UserFields{
		Name:  strPtr(name),
		Email: strPtr(name + "@x.com"),
		Age:   floatPtr(30),
	}, jpegUpload(name+".jpg", name+"-avatar"))
	require.NoError(t, err)
	return user
}

func (e *testEnv) createEvent(t *testing.T, name string, creator string, participants ...string) *models.Event {
	t.Helper()
	event, err := e.events.Create(context.Background(), models.EventFields{
		EventName:    strPtr(name),
		Creator:      strPtr(creator),
		Participants: participants,
		Description:  strPtr("d"),
		Location:     strPtr("l"),
	}, jpegUpload(name+".jpg", name+"-cover"))
	require.NoError(t, err)
	return event
}
