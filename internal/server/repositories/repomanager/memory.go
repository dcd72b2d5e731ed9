package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/seqsubmit/internal/dbx"
	"github.com/dmitrijs2005/seqsubmit/internal/server/repositories/submissions"
)

// MemoryRepositoryManager hands out one shared in-memory store regardless of
// the DBTX it is given. It backs the memory:// DSN.
type MemoryRepositoryManager struct {
	subs *submissions.MemoryRepository
}

// NewMemoryRepositoryManager returns a manager over a fresh in-memory store.
func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{subs: submissions.NewMemoryRepository()}
}

// RunMigrations is a no-op; the memory store has no schema.
func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *MemoryRepositoryManager) Submissions(dbx.DBTX) submissions.Repository {
	return m.subs
}
