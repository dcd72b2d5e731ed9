package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/seqsubmit/internal/common"
	"github.com/dmitrijs2005/seqsubmit/internal/server/models"
	"github.com/dmitrijs2005/seqsubmit/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFailed(t *testing.T, m *repomanager.MemoryRepositoryManager, user, dir string) string {
	t.Helper()
	repo := m.Submissions(nil)
	id, err := repo.Insert(context.Background(), &models.Submission{UserID: user, SubmissionDir: dir, Status: models.StatusReady})
	require.NoError(t, err)
	require.NoError(t, repo.Update(context.Background(), &models.Submission{ID: id, Status: models.StatusFailed}))
	return id
}

func TestSubmissionService_List(t *testing.T) {
	m := repomanager.NewMemoryRepositoryManager()
	seedFailed(t, m, "u1", "/a")
	seedFailed(t, m, "u2", "/b")
	seedFailed(t, m, "u1", "/c")

	svc := NewSubmissionService(nil, m)
	got, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "/a", got[0].SubmissionDir)
	assert.Equal(t, "/c", got[1].SubmissionDir)
}

func TestSubmissionService_Reset(t *testing.T) {
	m := repomanager.NewMemoryRepositoryManager()
	id := seedFailed(t, m, "u1", "/a")
	svc := NewSubmissionService(nil, m)

	assert.ErrorIs(t, svc.Reset(context.Background(), "intruder", id), common.ErrorNotFound)
	assert.ErrorIs(t, svc.Reset(context.Background(), "u1", "missing"), common.ErrorNotFound)

	require.NoError(t, svc.Reset(context.Background(), "u1", id))
	got, err := m.Submissions(nil).FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, got.Status)

	assert.ErrorIs(t, svc.Reset(context.Background(), "u1", id), common.ErrorNotFound, "READY cannot be reset again")
}

func TestSubmissionService_ResetUsesTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := repomanager.NewMemoryRepositoryManager()
	id := seedFailed(t, m, "u1", "/a")

	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := NewSubmissionService(db, m)
	require.NoError(t, svc.Reset(context.Background(), "u1", id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionService_ResetRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := NewSubmissionService(db, repomanager.NewMemoryRepositoryManager())
	err = svc.Reset(context.Background(), "u1", "missing")
	assert.True(t, errors.Is(err, common.ErrorNotFound), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
