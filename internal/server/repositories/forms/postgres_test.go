package forms

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/onboarding/internal/common"
	"github.com/dmitrijs2005/onboarding/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entryCols = []string{"id", "user_id", "steps", "completed", "completed_at", "created_at", "updated_at"}

const (
	getOrCreateQ = `(?s)^INSERT\s+INTO\s+form_entries\s*\(id,\s*user_id\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT\s*\(user_id\)\s*DO\s+UPDATE.*RETURNING\s+id,\s*user_id,\s*steps`
	findQ        = `(?s)^SELECT\s+id,\s*user_id,\s*steps,.*FROM\s+form_entries\s+WHERE\s+user_id\s*=\s*\$1$`
	mergeQ       = `(?s)^INSERT\s+INTO\s+form_entries\s*\(id,\s*user_id,\s*steps\).*ON\s+CONFLICT\s*\(user_id\)\s*DO\s+UPDATE\s+SET\s+steps\s*=\s*form_entries\.steps\s*\|\|.*RETURNING\s+steps\s*->\s*\$3::text$`
	completeQ    = `(?s)^UPDATE\s+form_entries\s+SET\s+completed\s*=\s*TRUE,\s*completed_at\s*=\s*\$2.*WHERE\s+user_id\s*=\s*\$1`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestGetOrCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(getOrCreateQ).
		WithArgs(sqlmock.AnyArg(), "u-1").
		WillReturnRows(sqlmock.NewRows(entryCols).
			AddRow("f-1", "u-1", []byte(`{"1":{"yourName":"A"}}`), false, nil, now, now))

	e, err := repo.GetOrCreate(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "f-1", e.ID)
	assert.Equal(t, models.StepData{"yourName": "A"}, e.Step("1"))
	assert.Nil(t, e.CompletedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getOrCreateQ).WillReturnError(errors.New("db down"))

	_, err := repo.GetOrCreate(context.Background(), "u-1")
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestFind(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	done := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(findQ).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(entryCols).
			AddRow("f-1", "u-1", []byte(`{}`), true, done, done, done))
	mock.ExpectQuery(findQ).WithArgs("u-2").WillReturnError(sql.ErrNoRows)

	e, err := repo.Find(context.Background(), "u-1")
	require.NoError(t, err)
	assert.True(t, e.Completed)
	require.NotNil(t, e.CompletedAt)
	assert.True(t, done.Equal(*e.CompletedAt))
	assert.Empty(t, e.Steps)

	_, err = repo.Find(context.Background(), "u-2")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMergeStep(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(mergeQ).
		WithArgs(sqlmock.AnyArg(), "u-1", "1", `{"location":"india"}`).
		WillReturnRows(sqlmock.NewRows([]string{"step"}).AddRow([]byte(`{"yourName":"A","location":"india"}`)))

	got, err := repo.MergeStep(context.Background(), "u-1", "1", models.StepData{"location": "india"})
	require.NoError(t, err)
	assert.Equal(t, models.StepData{"yourName": "A", "location": "india"}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeStep_NilPatchSendsEmptyObject(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(mergeQ).
		WithArgs(sqlmock.AnyArg(), "u-1", "3", `{}`).
		WillReturnRows(sqlmock.NewRows([]string{"step"}).AddRow([]byte(`{}`)))

	got, err := repo.MergeStep(context.Background(), "u-1", "3", nil)
	require.NoError(t, err)
	assert.Equal(t, models.StepData{}, got)
}

func TestMergeStep_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(mergeQ).WillReturnError(errors.New("boom"))

	_, err := repo.MergeStep(context.Background(), "u-1", "1", models.StepData{"yourName": "A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestMarkCompleted(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(completeQ).
		WithArgs("u-1", at).
		WillReturnRows(sqlmock.NewRows(entryCols).AddRow("f-1", "u-1", []byte(`{"2":{"mainGoal":"Others"}}`), true, at, at, at))
	mock.ExpectQuery(completeQ).
		WithArgs("ghost", at).
		WillReturnError(sql.ErrNoRows)

	e, err := repo.MarkCompleted(context.Background(), "u-1", at)
	require.NoError(t, err)
	assert.True(t, e.Completed)
	assert.Equal(t, "Others", e.Step("2")["mainGoal"])

	_, err = repo.MarkCompleted(context.Background(), "ghost", at)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
