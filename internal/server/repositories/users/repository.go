// Package users stores accounts. Every backend returns common.ErrorNotFound
// for a missing user and common.ErrDuplicateEmail for a taken email.
package users

import (
	"context"

	"github.com/dmitrijs2005/onboarding/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
