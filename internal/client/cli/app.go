package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/onboarding/internal/client/api"
	"github.com/dmitrijs2005/onboarding/internal/client/config"
	"github.com/dmitrijs2005/onboarding/internal/client/session"
	"github.com/dmitrijs2005/onboarding/internal/logging"
)

// App holds what every command needs once flags are parsed.
type App struct {
	config *config.Config
	api    *api.Client
	store  *session.SQLiteStore
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, c *config.Config, in io.Reader, out, errOut io.Writer) (*App, error) {
	logger, err := logging.New(c.LogBackend, errOut, c.LogDebug)
	if err != nil {
		return nil, err
	}

	path := c.SessionDBPath
	if path == "" {
		path, err = session.DefaultPath(config.StateDirName)
		if err != nil {
			return nil, fmt.Errorf("session dir: %w", err)
		}
	}

	store, err := session.OpenSQLite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	return &App{
		config: c,
		api:    api.New(c.ServerURL, nil, store, c.RequestTimeout),
		store:  store,
		logger: logger,
		reader: bufio.NewReader(in),
		out:    out,
	}, nil
}

func (a *App) Close() error {
	return a.store.Close()
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
