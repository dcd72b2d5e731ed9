package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/seqsubmit/internal/dbx"
	"github.com/dmitrijs2005/seqsubmit/internal/server/repositories/submissions"
)

// RepositoryManager vends repositories bound to a DBTX and prepares the schema.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Submissions(db dbx.DBTX) submissions.Repository
}
