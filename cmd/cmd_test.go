package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"eventboard-backend/internal/config"
	"eventboard-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_Memory(t *testing.T) {
	st, err := openStore(context.Background(), config.StoreConfig{URI: "memory://"})
	require.NoError(t, err)
	defer st.close()

	assert.Equal(t, "memory", st.backend)
	assert.NoError(t, st.pinger.Ping(context.Background()))

	users, err := st.users.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestOpenStore_UnsupportedScheme(t *testing.T) {
	_, err := openStore(context.Background(), config.StoreConfig{URI: "redis://localhost:6379"})
	assert.ErrorContains(t, err, "unsupported store scheme")
}

func TestNewStager_Disk(t *testing.T) {
	cfg := config.Default()
	cfg.Server.UploadsDir = filepath.Join(t.TempDir(), "uploads")

	stager, err := newStager(context.Background(), cfg)
	require.NoError(t, err)

	disk, ok := stager.(*services.DiskStager)
	require.True(t, ok)
	assert.Equal(t, cfg.Server.UploadsDir, disk.Dir())
}
