package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, ":4000", c.EndpointAddrHTTP)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, StoragePostgres, c.StorageDriver)
	assert.Equal(t, 7*24*time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, int64(10<<20), c.MaxBodyBytes)
	assert.Equal(t, "slog", c.LogBackend)
}

func TestLoad_NoSources_YieldsDefaults(t *testing.T) {
	c := Load(nil, "")
	require.NotNil(t, c, "Load must not return nil")
	assert.Empty(t, cmp.Diff(defaults(), c))
}

func TestLoad_LayerPrecedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORT=5000\nSTORAGE_DRIVER=mongo\nJWT_SECRET=from-env\n"), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"PORT", "STORAGE_DRIVER", "JWT_SECRET"} {
			_ = os.Unsetenv(k)
		}
	})

	jsonPath := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"storage_driver": "memory",
		"secret_key":     "from-json",
	})

	c := Load([]string{"-c", jsonPath, "-s", "from-flag"}, envFile)

	assert.Equal(t, ":5000", c.EndpointAddrHTTP, "env layer")
	assert.Equal(t, StorageMemory, c.StorageDriver, "json beats env")
	assert.Equal(t, "from-flag", c.SecretKey, "flags beat json")
}
