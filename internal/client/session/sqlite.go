package session

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/onboarding/internal/client/migrations"
	"github.com/dmitrijs2005/onboarding/internal/dbx"
	"github.com/dmitrijs2005/onboarding/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const (
	keyToken  = "session.token"
	keyUserID = "session.user_id"
	keyName   = "session.name"
	keyEmail  = "session.email"
)

var sessionKeys = []string{keyToken, keyUserID, keyName, keyEmail}

// SQLiteStore keeps the session in the local metadata table.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultPath is ~/<stateDir>/session.db; the directory is created if needed.
func DefaultPath(stateDir string) (string, error) {
	dir, err := filex.StateDir(stateDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.db"), nil
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// OpenSQLite opens (creating if needed) the database at dsn and migrates it.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context) (Session, error) {
	var out Session
	r := &metadataRepository{db: s.db}
	fields := map[string]*string{
		keyToken:  &out.Token,
		keyUserID: &out.UserID,
		keyName:   &out.Name,
		keyEmail:  &out.Email,
	}
	for _, k := range sessionKeys {
		v, err := r.Get(ctx, k)
		if err != nil {
			return Session{}, err
		}
		*fields[k] = string(v)
	}
	return out, nil
}

// Set replaces the stored session atomically.
func (s *SQLiteStore) Set(ctx context.Context, sess Session) error {
	values := map[string]string{
		keyToken:  sess.Token,
		keyUserID: sess.UserID,
		keyName:   sess.Name,
		keyEmail:  sess.Email,
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := &metadataRepository{db: tx}
		for _, k := range sessionKeys {
			if err := r.Set(ctx, k, []byte(values[k])); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := &metadataRepository{db: tx}
		for _, k := range sessionKeys {
			if err := r.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
