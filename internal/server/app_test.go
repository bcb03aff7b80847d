package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/server/config"
	"github.com/dmitrijs2005/onboarding/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StorageDriver = config.StorageMemory
	cfg.EndpointAddrHTTP = "127.0.0.1:0"
	cfg.EndpointAddrGRPC = "127.0.0.1:0"
	cfg.ShutdownTimeout = time.Second
	return cfg
}

type migrationFailure struct {
	*repomanager.MemoryRepositoryManager
	closed bool
}

func (m *migrationFailure) RunMigrations(context.Context) error { return errors.New("boom") }

func (m *migrationFailure) Close(context.Context) error {
	m.closed = true
	return nil
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestApp_RunReturnsServerError(t *testing.T) {
	cfg := testConfig()
	cfg.EndpointAddrHTTP = "bad-address"
	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)

	select {
	case err := <-runAsync(app):
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func runAsync(app *App) <-chan error {
	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()
	return done
}

func TestNewApp_Errors(t *testing.T) {
	cfg := testConfig()
	cfg.LogBackend = "nope"
	_, err := NewApp(context.Background(), cfg)
	assert.ErrorContains(t, err, "logger init error")

	cfg = testConfig()
	cfg.StorageDriver = "cassandra"
	_, err = NewApp(context.Background(), cfg)
	assert.ErrorContains(t, err, "db init error")
}

func TestNewApp_MigrationFailureClosesStore(t *testing.T) {
	store := &migrationFailure{MemoryRepositoryManager: repomanager.NewMemoryRepositoryManager()}
	orig := openStore
	openStore = func(context.Context, *config.Config) (repomanager.RepositoryManager, error) { return store, nil }
	t.Cleanup(func() { openStore = orig })

	_, err := NewApp(context.Background(), testConfig())
	assert.ErrorContains(t, err, "db migration error")
	assert.True(t, store.closed)
}
