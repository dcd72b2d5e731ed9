// Package submissions persists Submission records and their delivery status.
package submissions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/seqsubmit/internal/server/models"
)

// Repository is the durable store for submissions.
type Repository interface {
	// Insert stores s and returns its generated ID.
	Insert(ctx context.Context, s *models.Submission) (string, error)
	// Update persists s.Status and releases any claim on the row.
	Update(ctx context.Context, s *models.Submission) error
	// FindByStatus returns submissions in the given status, oldest first.
	FindByStatus(ctx context.Context, status models.Status) ([]*models.Submission, error)
	// FindByUser returns the submissions owned by userID, oldest first.
	FindByUser(ctx context.Context, userID string) ([]*models.Submission, error)
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	// Claim leases a READY submission until the given time. It reports false
	// when the row is not READY or another lease is still active.
	Claim(ctx context.Context, id string, until time.Time) (bool, error)
	// Reset moves a FAILED submission back to READY.
	Reset(ctx context.Context, id string) error
}
