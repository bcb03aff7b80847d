package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/common"
	"github.com/dmitrijs2005/onboarding/internal/server/models"
	"github.com/dmitrijs2005/onboarding/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/onboarding/internal/steps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFormService(t *testing.T) *FormService {
	t.Helper()
	return NewFormService(repomanager.NewMemoryRepositoryManager(), nopLogger{})
}

func TestUpdateStep_SequentialPatchesMerge(t *testing.T) {
	s := newFormService(t)
	ctx := context.Background()

	_, err := s.UpdateStep(ctx, "u1", 1, []byte(`{"yourName":"A"}`))
	require.NoError(t, err)
	merged, err := s.UpdateStep(ctx, "u1", 1, []byte(`{"location":"india"}`))
	require.NoError(t, err)

	want := models.StepData{"yourName": "A", "location": "india"}
	assert.Equal(t, want, merged)

	got, err := s.GetStep(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUpdateStep_OutOfRangeNeverMutates(t *testing.T) {
	s := newFormService(t)
	ctx := context.Background()

	for _, n := range []steps.Number{0, 6, 9} {
		_, err := s.UpdateStep(ctx, "u1", n, []byte(`{"yourName":"A"}`))
		assert.ErrorIs(t, err, common.ErrValidation, "step %d", n)
	}

	_, err := s.Submit(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound, "rejected updates must not create the entry")
}

func TestUpdateStep_RejectsInvalidData(t *testing.T) {
	s := newFormService(t)
	ctx := context.Background()

	for _, raw := range []string{`[]`, `"x"`, `null`, `{"location":"mars"}`, `{"unknown":1}`} {
		_, err := s.UpdateStep(ctx, "u1", 1, []byte(raw))
		assert.ErrorIs(t, err, common.ErrValidation, raw)
	}
}

func TestUpdateStep_ImageKeyMustBelongToUser(t *testing.T) {
	s := newFormService(t)
	ctx := context.Background()

	_, err := s.UpdateStep(ctx, "u1", steps.Career, []byte(`{"profileImage":"users/u2/profile/2026/01/01/x"}`))
	assert.ErrorIs(t, err, common.ErrValidation)

	got, err := s.UpdateStep(ctx, "u1", steps.Career, []byte(`{"profileImage":"users/u1/profile/2026/01/01/x"}`))
	require.NoError(t, err)
	assert.Equal(t, "users/u1/profile/2026/01/01/x", got["profileImage"])
}

func TestGetStep(t *testing.T) {
	s := newFormService(t)
	ctx := context.Background()

	first, err := s.GetStep(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Equal(t, models.StepData{}, first)

	second, err := s.GetStep(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = s.GetStep(ctx, "u1", 6)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestGetForm_CreatesLazily(t *testing.T) {
	s := newFormService(t)
	ctx := context.Background()

	e, err := s.GetForm(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", e.UserID)
	assert.False(t, e.Completed)

	done, err := s.Submit(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, done.Completed)
}

func TestSubmit(t *testing.T) {
	s := newFormService(t)
	ctx := context.Background()
	at := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }

	_, err := s.Submit(ctx, "fresh")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.UpdateStep(ctx, "u1", 2, []byte(`{"mainGoal":"Get a Good Job"}`))
	require.NoError(t, err)

	e, err := s.Submit(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, e.Completed)
	require.NotNil(t, e.CompletedAt)
	assert.Equal(t, at, *e.CompletedAt)
	assert.Equal(t, "Get a Good Job", e.Step("2")["mainGoal"])
}

func TestFormService_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("store down")
	s := NewFormService(&stubManager{forms: failingForms{err: boom}}, nopLogger{})
	ctx := context.Background()

	_, err := s.GetForm(ctx, "u1")
	assert.ErrorIs(t, err, boom)
	_, err = s.GetStep(ctx, "u1", 1)
	assert.ErrorIs(t, err, boom)
	_, err = s.UpdateStep(ctx, "u1", 1, []byte(`{}`))
	assert.ErrorIs(t, err, boom)
	_, err = s.Submit(ctx, "u1")
	assert.ErrorIs(t, err, boom)
}
