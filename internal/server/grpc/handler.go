package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/seqsubmit/internal/common"
	pb "github.com/dmitrijs2005/seqsubmit/internal/proto"
	"github.com/dmitrijs2005/seqsubmit/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) RequestUpload(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	key, url, err := s.uploads.PresignUpload(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "presigning upload", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return encodeResponse(&pb.RequestUploadResponse{StorageKey: key, UploadURL: url})
}

// Ingest reports validation problems in the response body, not as RPC
// errors; only a malformed request fails the call.
func (s *GRPCServer) Ingest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var in pb.IngestRequest
	if err := pb.Decode(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if in.Metadata.StorageKey == "" {
		return nil, status.Error(codes.InvalidArgument, "storage_key is required")
	}
	in.Contact.UserID = userID

	s.logger.Info(ctx, "Ingest request", "user", userID, "expedition", in.Metadata.ExpeditionCode)

	out := s.ingest.IngestFromStorage(ctx, in.Contact, in.Metadata)

	return encodeResponse(outcomeToResponse(out))
}

func (s *GRPCServer) ListSubmissions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	subs, err := s.submissions.List(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "listing submissions", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	resp := &pb.ListSubmissionsResponse{Submissions: make([]pb.Submission, 0, len(subs))}
	for _, sub := range subs {
		resp.Submissions = append(resp.Submissions, pb.Submission{
			ID:             sub.ID,
			ProjectID:      sub.ProjectID,
			ExpeditionCode: sub.ExpeditionCode,
			Status:         string(sub.Status),
			CreatedAt:      sub.CreatedAt,
			UpdatedAt:      sub.UpdatedAt,
		})
	}

	return encodeResponse(resp)
}

func (s *GRPCServer) ResetSubmission(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var in pb.ResetSubmissionRequest
	if err := pb.Decode(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if in.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	if err := s.submissions.Reset(ctx, userID, in.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, status.Error(codes.NotFound, "no failed submission with that id")
		}
		s.logger.Error(ctx, "resetting submission", "id", in.ID, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	s.logger.Info(ctx, "Submission reset", "id", in.ID, "user", userID)
	return encodeResponse(&pb.ResetSubmissionResponse{Status: "READY"})
}

func outcomeToResponse(out *services.Outcome) *pb.IngestResponse {
	return &pb.IngestResponse{
		Success:      out.Success,
		Message:      out.Message,
		Reason:       string(out.Reason),
		SubmissionID: out.SubmissionID,
		MissingFiles: out.MissingFiles,
		InvalidFiles: out.InvalidFiles,
	}
}

func encodeResponse(v any) (*structpb.Struct, error) {
	resp, err := pb.Encode(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return resp, nil
}
