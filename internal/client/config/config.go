package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// StateDirName is the directory under $HOME holding client state.
const StateDirName = ".onboarding"

// Config holds runtime settings for the onboard CLI.
//
// SessionDBPath empty means ~/.onboarding/session.db.
type Config struct {
	ServerURL      string
	AutosaveDelay  time.Duration
	SessionDBPath  string
	RequestTimeout time.Duration
	LogBackend     string
	LogDebug       bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:4000"
	c.AutosaveDelay = time.Second
	c.SessionDBPath = ""
	c.RequestTimeout = 15 * time.Second
	c.LogBackend = "slog"
	c.LogDebug = false
}

// Load applies defaults, the environment, then the JSON file at path
// (skipped when path is empty).
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("ONBOARD_SERVER_URL"); ok && v != "" {
		cfg.ServerURL = v
	}
	if v, ok := lookup("ONBOARD_SESSION_DB"); ok && v != "" {
		cfg.SessionDBPath = v
	}
	if v, ok := lookup("ONBOARD_LOG_BACKEND"); ok && v != "" {
		cfg.LogBackend = v
	}
	if v, ok := lookup("ONBOARD_AUTOSAVE_DELAY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ONBOARD_AUTOSAVE_DELAY: %w", err)
		}
		cfg.AutosaveDelay = d
	}
	if v, ok := lookup("ONBOARD_REQUEST_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ONBOARD_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if v, ok := lookup("ONBOARD_LOG_DEBUG"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ONBOARD_LOG_DEBUG: %w", err)
		}
		cfg.LogDebug = b
	}
	return nil
}
