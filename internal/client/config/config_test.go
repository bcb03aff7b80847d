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

	assert.Equal(t, "http://localhost:4000", c.ServerURL)
	assert.Equal(t, time.Second, c.AutosaveDelay)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Empty(t, c.SessionDBPath)
}

func TestParseEnv(t *testing.T) {
	env := map[string]string{
		"ONBOARD_SERVER_URL":      "http://api:8080",
		"ONBOARD_AUTOSAVE_DELAY":  "250ms",
		"ONBOARD_SESSION_DB":      "/tmp/s.db",
		"ONBOARD_REQUEST_TIMEOUT": "3s",
		"ONBOARD_LOG_BACKEND":     "zap",
		"ONBOARD_LOG_DEBUG":       "true",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	c := defaults()
	require.NoError(t, parseEnv(c, lookup))

	want := &Config{
		ServerURL:      "http://api:8080",
		AutosaveDelay:  250 * time.Millisecond,
		SessionDBPath:  "/tmp/s.db",
		RequestTimeout: 3 * time.Second,
		LogBackend:     "zap",
		LogDebug:       true,
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEnv_BadValues(t *testing.T) {
	for _, key := range []string{"ONBOARD_AUTOSAVE_DELAY", "ONBOARD_REQUEST_TIMEOUT", "ONBOARD_LOG_DEBUG"} {
		lookup := func(k string) (string, bool) {
			if k == key {
				return "nope", true
			}
			return "", false
		}
		assert.ErrorContains(t, parseEnv(defaults(), lookup), key)
	}
}

func TestParseJson(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_url": "https://onboarding.example",
		"autosave_delay": "2s",
		"request_timeout": 5000000000,
		"log_debug": true
	}`), 0o600))

	c := defaults()
	require.NoError(t, parseJson(c, path))

	want := defaults()
	want.ServerURL = "https://onboarding.example"
	want.AutosaveDelay = 2 * time.Second
	want.RequestTimeout = 5 * time.Second
	want.LogDebug = true
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseJson_Errors(t *testing.T) {
	assert.NoError(t, parseJson(defaults(), ""))
	assert.ErrorContains(t, parseJson(defaults(), filepath.Join(t.TempDir(), "missing.json")), "read config")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))
	assert.ErrorContains(t, parseJson(defaults(), path), "parse config")
}

func TestLoad(t *testing.T) {
	t.Setenv("ONBOARD_SERVER_URL", "http://from-env")
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"autosave_delay":"3s"}`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env", c.ServerURL)
	assert.Equal(t, 3*time.Second, c.AutosaveDelay)

	t.Setenv("ONBOARD_AUTOSAVE_DELAY", "bad")
	_, err = Load("")
	assert.Error(t, err)
}
