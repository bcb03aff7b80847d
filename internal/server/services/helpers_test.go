package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/logging"
	"github.com/dmitrijs2005/onboarding/internal/server/config"
	"github.com/dmitrijs2005/onboarding/internal/server/models"
	"github.com/dmitrijs2005/onboarding/internal/server/repositories/forms"
	"github.com/dmitrijs2005/onboarding/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/onboarding/internal/server/repositories/users"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}

func (n nopLogger) With(...any) logging.Logger { return n }

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
		S3Region:                    "us-east-1",
		S3RootUser:                  "minioadmin",
		S3RootPassword:              "minioadmin",
		S3BaseEndpoint:              "http://127.0.0.1:9000",
		S3Bucket:                    "onboarding",
	}
}

// stubManager lets a test swap one repository for a failing fake.
type stubManager struct {
	repomanager.RepositoryManager
	users users.Repository
	forms forms.Repository
}

func (m *stubManager) Users() users.Repository { return m.users }
func (m *stubManager) Forms() forms.Repository { return m.forms }

type failingUsers struct{ err error }

func (f failingUsers) Create(context.Context, *models.User) (*models.User, error) { return nil, f.err }
func (f failingUsers) GetByEmail(context.Context, string) (*models.User, error)   { return nil, f.err }
func (f failingUsers) GetByID(context.Context, string) (*models.User, error)      { return nil, f.err }

type failingForms struct{ err error }

func (f failingForms) GetOrCreate(context.Context, string) (*models.FormEntry, error) {
	return nil, f.err
}
func (f failingForms) Find(context.Context, string) (*models.FormEntry, error) { return nil, f.err }
func (f failingForms) MergeStep(context.Context, string, string, models.StepData) (models.StepData, error) {
	return nil, f.err
}
func (f failingForms) MarkCompleted(context.Context, string, time.Time) (*models.FormEntry, error) {
	return nil, f.err
}
