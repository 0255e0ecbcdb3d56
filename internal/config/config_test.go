package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STATE_DIR", dir)
	t.Setenv("STOREFRONT_API_URL", "http://api.example.test/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://api.example.test", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, StorageFile, cfg.Storage.Backend)
	assert.Equal(t, dir, cfg.Storage.StateDir)
	assert.Equal(t, "storefront:", cfg.Storage.Redis.KeyPrefix)
	assert.Equal(t, DriverMemory, cfg.MockBackend.Driver)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_API_URL", "https://shop.example.test")
	t.Setenv("HTTP_TIMEOUT", "0s")
	t.Setenv("STORAGE_BACKEND", "REDIS")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), cfg.API.Timeout)
	assert.Equal(t, StorageRedis, cfg.Storage.Backend)
	assert.Equal(t, "localhost:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, 3, cfg.Storage.Redis.DB)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad timeout", env: map[string]string{"HTTP_TIMEOUT": "soon"}},
		{name: "bad redis db", env: map[string]string{"REDIS_DB": "zero"}},
		{name: "redis without addr", env: map[string]string{"STORAGE_BACKEND": "redis"}},
		{name: "unknown storage", env: map[string]string{"STORAGE_BACKEND": "floppy"}},
		{name: "relative api url", env: map[string]string{"STOREFRONT_API_URL": "/api"}},
		{name: "postgres without host", env: map[string]string{"MOCK_DB_DRIVER": "postgres"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STATE_DIR", t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
