// Package common defines shared constants and sentinel errors used across
// the server and client layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrInvalidUserID = errors.New("invalid user id")

	// Ingest errors.
	ErrInvalidSampleSet = errors.New("invalid sample set")
	ErrCorruptArchive   = errors.New("corrupt archive")
	ErrMissingFiles     = errors.New("missing required files")
	ErrManifestWrite    = errors.New("manifest write error")
	ErrPersistence      = errors.New("persistence error")

	// Transfer errors.
	ErrTransferConnect = errors.New("transfer connect error")
	ErrTransferUpload  = errors.New("transfer upload error")

	// Dispatch errors.
	ErrRunInProgress = errors.New("dispatch run already in progress")
)

// MissingFilesError lists the required file names absent after extraction.
// It matches ErrMissingFiles with errors.Is.
type MissingFilesError struct {
	Names []string
}

func (e *MissingFilesError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingFiles, strings.Join(e.Names, ", "))
}

func (e *MissingFilesError) Unwrap() error {
	return ErrMissingFiles
}
