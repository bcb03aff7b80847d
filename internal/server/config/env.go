package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays values from the environment. Variables from envFile are
// loaded first but never override variables already set in the process.
//
// Recognised variables:
//
//	PORT, HTTP_ADDR, GRPC_ADDR, STORAGE_DRIVER, DATABASE_URL, MONGO_URI,
//	MONGO_DB, JWT_SECRET, JWT_EXPIRES_IN, CORS_ORIGINS, MAX_BODY_BYTES,
//	LOG_BACKEND, LOG_DEBUG, HEALTH_PROBE_INTERVAL, SHUTDOWN_TIMEOUT,
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_ENDPOINT
func parseEnv(config *Config, envFile string) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(fmt.Errorf("load %s: %w", envFile, err))
		}
	}

	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		config.EndpointAddrHTTP = ":" + strings.TrimPrefix(v, ":")
	}
	envString("HTTP_ADDR", &config.EndpointAddrHTTP)
	envString("GRPC_ADDR", &config.EndpointAddrGRPC)
	envString("STORAGE_DRIVER", &config.StorageDriver)
	envString("DATABASE_URL", &config.DatabaseDSN)
	envString("MONGO_URI", &config.MongoURI)
	envString("MONGO_DB", &config.MongoDatabase)
	envString("JWT_SECRET", &config.SecretKey)
	envDuration("JWT_EXPIRES_IN", &config.AccessTokenValidityDuration)
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok && v != "" {
		config.CORSOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("MAX_BODY_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(fmt.Errorf("MAX_BODY_BYTES: %w", err))
		}
		config.MaxBodyBytes = n
	}
	envString("LOG_BACKEND", &config.LogBackend)
	if v, ok := os.LookupEnv("LOG_DEBUG"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("LOG_DEBUG: %w", err))
		}
		config.LogDebug = b
	}
	envDuration("HEALTH_PROBE_INTERVAL", &config.HealthProbeInterval)
	envDuration("SHUTDOWN_TIMEOUT", &config.ShutdownTimeout)
	envString("S3_ROOT_USER", &config.S3RootUser)
	envString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	envString("S3_BUCKET", &config.S3Bucket)
	envString("S3_REGION", &config.S3Region)
	envString("S3_ENDPOINT", &config.S3BaseEndpoint)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// envDuration accepts Go duration syntax and the "7d" day suffix.
func envDuration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := parseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = d
}

func parseDuration(v string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", v)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
