package submissions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/seqsubmit/internal/common"
	"github.com/dmitrijs2005/seqsubmit/internal/dbx"
	"github.com/dmitrijs2005/seqsubmit/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

const selectColumns = `SELECT id, project_id, expedition_code, user_id, submission_dir, status, created_at, updated_at
		FROM submissions`

func (r *PostgresRepository) Insert(ctx context.Context, s *models.Submission) (string, error) {
	query :=
		`INSERT INTO submissions (project_id, expedition_code, user_id, submission_dir, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		s.ProjectID, s.ExpeditionCode, s.UserID, s.SubmissionDir, string(s.Status)).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return s.ID, nil
}

func (r *PostgresRepository) Update(ctx context.Context, s *models.Submission) error {
	if !s.Status.Valid() {
		return fmt.Errorf("invalid status %q", s.Status)
	}
	query :=
		`UPDATE submissions SET status = $1, claimed_until = NULL, updated_at = now()
		 WHERE id = $2
		 `
	res, err := r.db.ExecContext(ctx, query, string(s.Status), s.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) FindByStatus(ctx context.Context, status models.Status) ([]*models.Submission, error) {
	query := selectColumns + `
		WHERE status = $1
		ORDER BY created_at, id`
	return r.query(ctx, query, string(status))
}

func (r *PostgresRepository) FindByUser(ctx context.Context, userID string) ([]*models.Submission, error) {
	query := selectColumns + `
		WHERE user_id = $1
		ORDER BY created_at, id`
	return r.query(ctx, query, userID)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	query := selectColumns + `
		WHERE id = $1`

	s, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Claim(ctx context.Context, id string, until time.Time) (bool, error) {
	query :=
		`UPDATE submissions SET claimed_until = $2
		 WHERE id = $1 AND status = 'READY' AND (claimed_until IS NULL OR claimed_until < now())
		 `
	res, err := r.db.ExecContext(ctx, query, id, until)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) Reset(ctx context.Context, id string) error {
	query :=
		`UPDATE submissions SET status = 'READY', claimed_until = NULL, updated_at = now()
		 WHERE id = $1 AND status = 'FAILED'
		 `
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select submissions: %w", err)
	}
	defer rows.Close()

	var result []*models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*models.Submission, error) {
	var (
		s      models.Submission
		status string
	)
	if err := row.Scan(&s.ID, &s.ProjectID, &s.ExpeditionCode, &s.UserID, &s.SubmissionDir, &status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Status = models.Status(status)
	if !s.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q for submission %s", status, s.ID)
	}
	return &s, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
