// Package config loads runtime configuration for the onboard CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables (ONBOARD_SERVER_URL, ONBOARD_AUTOSAVE_DELAY,
//     ONBOARD_SESSION_DB, ONBOARD_REQUEST_TIMEOUT, ONBOARD_LOG_BACKEND,
//     ONBOARD_LOG_DEBUG).
//  3. Optional JSON file selected with -c / --config.
//
// Command-line flags are owned by the cobra root command and applied on top.
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "1s" or integer
// nanoseconds:
//
//	{
//	  "server_url": "http://localhost:4000",
//	  "autosave_delay": "1s",
//	  "session_db": "/home/me/.onboarding/session.db",
//	  "request_timeout": "15s"
//	}
package config
