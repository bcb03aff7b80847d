package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/timex"
	"github.com/goccy/go-json"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Zero values
// leave the earlier layers untouched.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	AutosaveDelay  timex.Duration `json:"autosave_delay"`
	SessionDBPath  string         `json:"session_db"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	LogBackend     string         `json:"log_backend"`
	LogDebug       *bool          `json:"log_debug"`
}

func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.AutosaveDelay.Duration != 0 {
		cfg.AutosaveDelay = time.Duration(jc.AutosaveDelay.Duration)
	}
	if jc.SessionDBPath != "" {
		cfg.SessionDBPath = jc.SessionDBPath
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.LogBackend != "" {
		cfg.LogBackend = jc.LogBackend
	}
	if jc.LogDebug != nil {
		cfg.LogDebug = *jc.LogDebug
	}
	return nil
}
