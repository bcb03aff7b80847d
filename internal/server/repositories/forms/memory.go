package forms

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/common"
	"github.com/dmitrijs2005/onboarding/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps entries in process memory. Each operation holds the
// lock for its whole read-modify-write, which gives the same atomicity as a
// single store statement.
type MemoryRepository struct {
	mu      sync.Mutex
	entries map[string]*models.FormEntry
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: map[string]*models.FormEntry{}, now: time.Now}
}

func (r *MemoryRepository) getOrCreateLocked(userID string) *models.FormEntry {
	e, ok := r.entries[userID]
	if !ok {
		e = models.NewFormEntry(uuid.NewString(), userID, r.now())
		r.entries[userID] = e
	}
	return e
}

func (r *MemoryRepository) GetOrCreate(_ context.Context, userID string) (*models.FormEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateLocked(userID).Clone(), nil
}

func (r *MemoryRepository) Find(_ context.Context, userID string) (*models.FormEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return e.Clone(), nil
}

func (r *MemoryRepository) MergeStep(_ context.Context, userID, key string, patch models.StepData) (models.StepData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged := r.getOrCreateLocked(userID).Merge(key, maps.Clone(patch), r.now())
	return maps.Clone(merged), nil
}

func (r *MemoryRepository) MarkCompleted(_ context.Context, userID string, at time.Time) (*models.FormEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	e.Completed = true
	e.CompletedAt = &at
	e.UpdatedAt = at
	return e.Clone(), nil
}
