// Package sra holds the sample and run metadata a caller sends along with a
// sequence archive. Client and server share these types.
package sra

import "time"

// Well-known MetadataRecord keys.
const (
	FieldSampleName = "sample_name"
	FieldFilename   = "filename"
	FieldFilename2  = "filename2"
)

// BioSample describes one biological sample.
type BioSample struct {
	SampleName string            `json:"sample_name"`
	Organism   string            `json:"organism,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// MetadataRecord maps field names to values for one sequencing run,
// including up to two file references.
type MetadataRecord map[string]string

// SampleName returns the sample identifier the record belongs to.
func (m MetadataRecord) SampleName() string { return m[FieldSampleName] }

// Filenames returns the non-empty file references of the record.
func (m MetadataRecord) Filenames() []string {
	var out []string
	for _, key := range []string{FieldFilename, FieldFilename2} {
		if v := m[key]; v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SubmissionData is the set of samples and run metadata a submission
// request resolves against. Once filtered down to the requested sample
// names it is the Filtered Submission Data.
type SubmissionData struct {
	BioSamples []BioSample      `json:"bio_samples"`
	Metadata   []MetadataRecord `json:"sra_metadata"`
}

// UploadMetadata is what a caller sends along with an archive.
type UploadMetadata struct {
	ProjectID       int64  `json:"project_id"`
	ExpeditionCode  string `json:"expedition_code"`
	ExpeditionTitle string `json:"expedition_title,omitempty"`
	// BioSamples are the requested sample names.
	BioSamples []string `json:"bio_samples"`
	// StorageKey names the uploaded archive object.
	StorageKey string `json:"storage_key,omitempty"`
	// ReleaseDate optionally holds the data private until that day.
	ReleaseDate    *time.Time     `json:"release_date,omitempty"`
	SubmissionData SubmissionData `json:"submission_data"`
}

// SubmitterContact identifies the owner of a submission.
type SubmitterContact struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Institution string `json:"institution,omitempty"`
}
