package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/common"
	"github.com/dmitrijs2005/onboarding/internal/logging"
	"github.com/dmitrijs2005/onboarding/internal/server/models"
	"github.com/dmitrijs2005/onboarding/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/onboarding/internal/steps"
)

type FormService struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewFormService(m repomanager.RepositoryManager, logger logging.Logger) *FormService {
	return &FormService{repomanager: m, logger: logger, now: time.Now}
}

// GetForm returns the user's entry, creating an empty one on first access.
func (s *FormService) GetForm(ctx context.Context, userID string) (*models.FormEntry, error) {
	return s.repomanager.Forms().GetOrCreate(ctx, userID)
}

// GetStep returns the object stored for step n, or an empty object.
func (s *FormService) GetStep(ctx context.Context, userID string, n steps.Number) (models.StepData, error) {
	if err := steps.Check(n); err != nil {
		return nil, err
	}
	entry, err := s.repomanager.Forms().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return entry.Step(n.Key()), nil
}

// UpdateStep validates raw against the schema of step n and merges it into
// the stored step. Nothing is written when validation fails.
func (s *FormService) UpdateStep(ctx context.Context, userID string, n steps.Number, raw []byte) (models.StepData, error) {
	patch, err := steps.Decode(n, raw)
	if err != nil {
		return nil, err
	}
	if err := checkImageOwner(userID, patch); err != nil {
		return nil, err
	}

	fields, err := steps.AsMap(patch)
	if err != nil {
		return nil, fmt.Errorf("error encoding step: %w", err)
	}

	merged, err := s.repomanager.Forms().MergeStep(ctx, userID, n.Key(), fields)
	if err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "step saved", "user_id", userID, "step", int(n), "fields", len(fields))
	return merged, nil
}

// Submit marks the form completed. Users who never saved or loaded the form
// get common.ErrorNotFound.
func (s *FormService) Submit(ctx context.Context, userID string) (*models.FormEntry, error) {
	entry, err := s.repomanager.Forms().MarkCompleted(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "form submitted", "user_id", userID)
	return entry, nil
}

// checkImageOwner rejects object keys that were issued to another user.
func checkImageOwner(userID string, patch steps.Patch) error {
	career, ok := patch.(*steps.CareerPatch)
	if !ok || career.ProfileImage == nil || !steps.IsObjectKey(*career.ProfileImage) {
		return nil
	}
	if !strings.HasPrefix(*career.ProfileImage, imageKeyPrefix(userID)) {
		return common.NewValidationError("profileImage", "image key does not belong to this user")
	}
	return nil
}
