package models

import (
	"time"

	"github.com/dmitrijs2005/seqsubmit/internal/sra"
)

// SubmissionContext is everything besides the sample data that the manifest
// needs.
type SubmissionContext struct {
	Submitter       sra.SubmitterContact
	ProjectID       int64
	ExpeditionCode  string
	ExpeditionTitle string
	ReleaseDate     *time.Time
	AppURL          string
}
