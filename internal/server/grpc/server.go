// Package grpc exposes ingest and submission management over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/seqsubmit/internal/logging"
	pb "github.com/dmitrijs2005/seqsubmit/internal/proto"
	"github.com/dmitrijs2005/seqsubmit/internal/server/models"
	"github.com/dmitrijs2005/seqsubmit/internal/server/services"
	"github.com/dmitrijs2005/seqsubmit/internal/sra"
	"google.golang.org/grpc"
)

type uploadSvc interface {
	PresignUpload(ctx context.Context, userID string) (string, string, error)
}

type ingestSvc interface {
	IngestFromStorage(ctx context.Context, user sra.SubmitterContact, meta sra.UploadMetadata) *services.Outcome
}

type submissionSvc interface {
	List(ctx context.Context, userID string) ([]*models.Submission, error)
	Reset(ctx context.Context, userID, id string) error
}

type GRPCServer struct {
	address     string
	uploads     uploadSvc
	ingest      ingestSvc
	submissions submissionSvc
	logger      logging.Logger
	jwtSecret   []byte
}

var _ pb.SubmissionServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, us uploadSvc, is ingestSvc, ss submissionSvc, secretKey string) (*GRPCServer, error) {
	return &GRPCServer{
		address:     a,
		logger:      l.With("module", "grpc_server"),
		uploads:     us,
		ingest:      is,
		submissions: ss,
		jwtSecret:   []byte(secretKey),
	}, nil
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	// registers service
	pb.RegisterSubmissionServiceServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
