package proto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/seqsubmit/internal/sra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type RequestUploadRequest struct{}

type RequestUploadResponse struct {
	StorageKey string `json:"storage_key"`
	UploadURL  string `json:"upload_url"`
}

// IngestRequest names an uploaded archive and the sample data to check it
// against. Contact.UserID is ignored; the server takes it from the token.
type IngestRequest struct {
	Contact  sra.SubmitterContact `json:"contact"`
	Metadata sra.UploadMetadata   `json:"metadata"`
}

type IngestResponse struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	Reason       string   `json:"reason"`
	SubmissionID string   `json:"submission_id,omitempty"`
	MissingFiles []string `json:"missing_files,omitempty"`
	InvalidFiles []string `json:"invalid_files,omitempty"`
}

type ListSubmissionsRequest struct{}

type Submission struct {
	ID             string    `json:"id"`
	ProjectID      int64     `json:"project_id"`
	ExpeditionCode string    `json:"expedition_code"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ListSubmissionsResponse struct {
	Submissions []Submission `json:"submissions"`
}

type ResetSubmissionRequest struct {
	ID string `json:"id"`
}

type ResetSubmissionResponse struct {
	Status string `json:"status"`
}

// Encode converts a message into a Struct through its JSON form.
func Encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return s, nil
}

// Decode fills v from s. A nil s decodes as an empty object.
func Decode(s *structpb.Struct, v any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}
