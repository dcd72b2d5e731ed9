package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/seqsubmit/internal/common"
	"github.com/dmitrijs2005/seqsubmit/internal/dbx"
	"github.com/dmitrijs2005/seqsubmit/internal/server/models"
	"github.com/dmitrijs2005/seqsubmit/internal/server/repositories/repomanager"
)

// SubmissionService exposes submission records to their owners.
type SubmissionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSubmissionService(db *sql.DB, m repomanager.RepositoryManager) *SubmissionService {
	return &SubmissionService{db: db, repomanager: m}
}

// List returns the caller's submissions, oldest first.
func (s *SubmissionService) List(ctx context.Context, userID string) ([]*models.Submission, error) {
	return s.repomanager.Submissions(s.db).FindByUser(ctx, userID)
}

// Reset moves one of the caller's FAILED submissions back to READY so the
// next dispatch pass picks it up. Submissions owned by someone else are
// reported as common.ErrorNotFound.
func (s *SubmissionService) Reset(ctx context.Context, userID, id string) error {
	return s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Submissions(tx)

		sub, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if sub.UserID != userID {
			return common.ErrorNotFound
		}
		return repo.Reset(ctx, id)
	})
}

// withTx runs fn in a transaction, or directly when there is no database
// (the memory:// store).
func (s *SubmissionService) withTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, s.db, nil, fn)
}
