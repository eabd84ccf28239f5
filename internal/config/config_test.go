package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017/events")
	t.Setenv("HOST", "workstation.local")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Server.Host, "shell HOST is not the bind address")

	assert.Equal(t, "mongodb://localhost:27017/events", cfg.Store.URI)
	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, int64(10<<20), cfg.MaxBodyBytes())
	assert.Equal(t, StagerDisk, cfg.Images.Stager)
	assert.Equal(t, "uploads", cfg.Server.UploadsDir)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
  max_body_mb: 5
store:
  uri: postgres://localhost/events
images:
  stager: s3
  cleanup_staged: true
  display_timezone: Asia/Tokyo
aws:
  s3_bucket: staging
log:
  level: debug
`)
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("AWS_S3_PREFIX", "tmp")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port, "environment wins over file")
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 5, cfg.Server.MaxBodyMB)
	assert.Equal(t, "postgres://localhost/events", cfg.Store.URI)
	assert.Equal(t, StagerS3, cfg.Images.Stager)
	assert.True(t, cfg.Images.CleanupStaged)
	assert.Equal(t, "staging", cfg.AWS.S3Bucket)
	assert.Equal(t, "tmp", cfg.AWS.S3Prefix)
	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.Equal(t, "debug", cfg.Log.Level)

	loc, err := cfg.DisplayLocation()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)

	t.Setenv("MONGO_URI", "memory://")
	t.Setenv("PORT", "not-a-number")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Store.URI = "memory://"
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(*Config){
		"missing uri":     func(c *Config) { c.Store.URI = "" },
		"bad port":        func(c *Config) { c.Server.Port = 70000 },
		"bad body limit":  func(c *Config) { c.Server.MaxBodyMB = 0 },
		"unknown stager":  func(c *Config) { c.Images.Stager = "ftp" },
		"s3 needs bucket": func(c *Config) { c.Images.Stager = StagerS3 },
		"bad timezone":    func(c *Config) { c.Images.DisplayTimezone = "Mars/Olympus" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDisplayLocation_DefaultsToLocal(t *testing.T) {
	loc, err := Default().DisplayLocation()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}
