package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/seqsubmit/internal/common"
	pb "github.com/dmitrijs2005/seqsubmit/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is what the CLI needs from the server.
type Client interface {
	Close() error
	RequestUpload(ctx context.Context) (*pb.RequestUploadResponse, error)
	Ingest(ctx context.Context, req *pb.IngestRequest) (*pb.IngestResponse, error)
	ListSubmissions(ctx context.Context) ([]pb.Submission, error)
	ResetSubmission(ctx context.Context, id string) error
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *pb.SubmissionServiceClient
	accessToken string
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	ctx = withAccessToken(ctx, s.accessToken)
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewSubmissionClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults.
func NewSubmissionClient(endpointURL, accessToken string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewSubmissionServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) RequestUpload(ctx context.Context) (*pb.RequestUploadResponse, error) {
	var out pb.RequestUploadResponse
	if err := s.call(ctx, s.client.RequestUpload, &pb.RequestUploadRequest{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GRPCClient) Ingest(ctx context.Context, req *pb.IngestRequest) (*pb.IngestResponse, error) {
	var out pb.IngestResponse
	if err := s.call(ctx, s.client.Ingest, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GRPCClient) ListSubmissions(ctx context.Context) ([]pb.Submission, error) {
	var out pb.ListSubmissionsResponse
	if err := s.call(ctx, s.client.ListSubmissions, &pb.ListSubmissionsRequest{}, &out); err != nil {
		return nil, err
	}
	return out.Submissions, nil
}

func (s *GRPCClient) ResetSubmission(ctx context.Context, id string) error {
	var out pb.ResetSubmissionResponse
	return s.call(ctx, s.client.ResetSubmission, &pb.ResetSubmissionRequest{ID: id}, &out)
}

type rpc func(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)

func (s *GRPCClient) call(ctx context.Context, method rpc, req, resp any) error {
	in, err := pb.Encode(req)
	if err != nil {
		return err
	}
	out, err := method(ctx, in)
	if err != nil {
		return s.mapError(err)
	}
	return pb.Decode(out, resp)
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrBadRequest, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
