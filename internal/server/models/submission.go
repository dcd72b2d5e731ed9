// Package models defines server-side data models for submissions and the
// sample metadata they are built from.
package models

import "time"

// Status is the delivery lifecycle state of a Submission.
type Status string

const (
	// StatusReady means staged and awaiting delivery.
	StatusReady Status = "READY"
	// StatusSubmitted means every file and the sentinel reached the remote side.
	StatusSubmitted Status = "SUBMITTED"
	// StatusFailed means a delivery attempt was made and did not complete.
	StatusFailed Status = "FAILED"
)

// Terminal reports whether the dispatcher must leave s alone.
func (s Status) Terminal() bool {
	return s == StatusSubmitted || s == StatusFailed
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusReady, StatusSubmitted, StatusFailed:
		return true
	}
	return false
}

// Submission is one staged delivery and its lifecycle status.
type Submission struct {
	ID             string
	ProjectID      int64
	ExpeditionCode string
	// UserID is the owning identity.
	UserID string
	// SubmissionDir is the absolute staging directory; unique per submission.
	SubmissionDir string
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
