// Package forms stores one wizard FormEntry per user.
//
// Step objects are merged in a single store operation so that concurrent
// writers to different keys of the same step never lose each other's fields.
// Writers to the same key race and the last one wins.
package forms

import (
	"context"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/server/models"
)

type Repository interface {
	// GetOrCreate returns the user's entry, creating an empty one if needed.
	GetOrCreate(ctx context.Context, userID string) (*models.FormEntry, error)
	// Find returns common.ErrorNotFound when the user has no entry.
	Find(ctx context.Context, userID string) (*models.FormEntry, error)
	// MergeStep shallow-merges patch into the object stored at key, creating
	// the entry when absent, and returns the merged object.
	MergeStep(ctx context.Context, userID, key string, patch models.StepData) (models.StepData, error)
	// MarkCompleted sets completed and completedAt. It returns
	// common.ErrorNotFound when the user has no entry.
	MarkCompleted(ctx context.Context, userID string, at time.Time) (*models.FormEntry, error)
}
