package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAPI_Defaults(t *testing.T) {
	cfg, err := LoadAPI()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "takesandtastes", cfg.MongoDatabase)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoadClient_Overrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "mongo")
	t.Setenv("CART_CONFLICT_POLICY", "replace")
	t.Setenv("REQUEST_TIMEOUT", "3s")

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, BackendMongo, cfg.StorageBackend)
	assert.Equal(t, "replace", cfg.ConflictPolicy)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "Pakistan", cfg.Country)
}

func TestLoadClient_UnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")

	_, err := LoadClient()
	assert.Error(t, err)
}
