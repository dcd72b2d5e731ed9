package submissions

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/seqsubmit/internal/common"
	"github.com/dmitrijs2005/seqsubmit/internal/server/models"
	"github.com/google/uuid"
)

type memoryRow struct {
	sub          models.Submission
	seq          int64
	claimedUntil time.Time
}

// MemoryRepository is an in-process Repository for the memory:// DSN and
// for tests. It is safe for concurrent use.
type MemoryRepository struct {
	mu   sync.Mutex
	rows map[string]*memoryRow
	seq  int64
	now  func() time.Time
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]*memoryRow), now: time.Now}
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) Insert(_ context.Context, s *models.Submission) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.sub.SubmissionDir == s.SubmissionDir {
			return "", fmt.Errorf("%w: duplicate submission dir %q", common.ErrPersistence, s.SubmissionDir)
		}
	}

	now := r.now()
	s.ID = uuid.NewString()
	s.CreatedAt, s.UpdatedAt = now, now
	r.seq++
	r.rows[s.ID] = &memoryRow{sub: *s, seq: r.seq}
	return s.ID, nil
}

func (r *MemoryRepository) Update(_ context.Context, s *models.Submission) error {
	if !s.Status.Valid() {
		return fmt.Errorf("invalid status %q", s.Status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[s.ID]
	if !ok {
		return common.ErrorNotFound
	}
	row.sub.Status = s.Status
	row.sub.UpdatedAt = r.now()
	row.claimedUntil = time.Time{}
	s.UpdatedAt = row.sub.UpdatedAt
	return nil
}

func (r *MemoryRepository) FindByStatus(_ context.Context, status models.Status) ([]*models.Submission, error) {
	return r.filter(func(s *models.Submission) bool { return s.Status == status }), nil
}

func (r *MemoryRepository) FindByUser(_ context.Context, userID string) ([]*models.Submission, error) {
	return r.filter(func(s *models.Submission) bool { return s.UserID == userID }), nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	s := row.sub
	return &s, nil
}

func (r *MemoryRepository) Claim(_ context.Context, id string, until time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok || row.sub.Status != models.StatusReady {
		return false, nil
	}
	if !row.claimedUntil.IsZero() && !row.claimedUntil.Before(r.now()) {
		return false, nil
	}
	row.claimedUntil = until
	return true, nil
}

func (r *MemoryRepository) Reset(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok || row.sub.Status != models.StatusFailed {
		return common.ErrorNotFound
	}
	row.sub.Status = models.StatusReady
	row.sub.UpdatedAt = r.now()
	row.claimedUntil = time.Time{}
	return nil
}

func (r *MemoryRepository) filter(keep func(*models.Submission) bool) []*models.Submission {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*memoryRow
	for _, row := range r.rows {
		if keep(&row.sub) {
			matched = append(matched, row)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })

	out := make([]*models.Submission, 0, len(matched))
	for _, row := range matched {
		s := row.sub
		out = append(out, &s)
	}
	return out
}
