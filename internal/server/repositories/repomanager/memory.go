package repomanager

import (
	"context"

	"github.com/dmitrijs2005/onboarding/internal/server/repositories/forms"
	"github.com/dmitrijs2005/onboarding/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. Data is lost
// on restart; meant for development and tests.
type MemoryRepositoryManager struct {
	users *users.MemoryRepository
	forms *forms.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users: users.NewMemoryRepository(),
		forms: forms.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *MemoryRepositoryManager) Forms() forms.Repository { return m.forms }

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Ping(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close(context.Context) error { return nil }
