package client

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/dmitrijs2005/seqsubmit/internal/common"
	pb "github.com/dmitrijs2005/seqsubmit/internal/proto"
	"github.com/dmitrijs2005/seqsubmit/internal/sra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

// fakeServer answers every method from preset values and records the token
// and decoded request it saw.
type fakeServer struct {
	token     string
	ingestReq pb.IngestRequest
	resetReq  pb.ResetSubmissionRequest
	err       error
}

func (f *fakeServer) seeToken(ctx context.Context) {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
			f.token = v[0]
		}
	}
}

func (f *fakeServer) RequestUpload(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	f.seeToken(ctx)
	if f.err != nil {
		return nil, f.err
	}
	return pb.Encode(&pb.RequestUploadResponse{StorageKey: "uploads/u1/k", UploadURL: "http://put"})
}

func (f *fakeServer) Ingest(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f.seeToken(ctx)
	if err := pb.Decode(in, &f.ingestReq); err != nil {
		return nil, err
	}
	return pb.Encode(&pb.IngestResponse{Success: true, Reason: "success", SubmissionID: "sub-1"})
}

func (f *fakeServer) ListSubmissions(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	f.seeToken(ctx)
	return pb.Encode(&pb.ListSubmissionsResponse{Submissions: []pb.Submission{{ID: "a", Status: "READY"}}})
}

func (f *fakeServer) ResetSubmission(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f.seeToken(ctx)
	if err := pb.Decode(in, &f.resetReq); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return pb.Encode(&pb.ResetSubmissionResponse{Status: "READY"})
}

func startFake(t *testing.T, fake *fakeServer, token string) *GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	pb.RegisterSubmissionServiceServer(srv, fake)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := NewSubmissionClient("passthrough:///bufnet", token,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGRPCClient_RoundTrips(t *testing.T) {
	fake := &fakeServer{}
	c := startFake(t, fake, "tok-1")
	ctx := context.Background()

	up, err := c.RequestUpload(ctx)
	require.NoError(t, err)
	assert.Equal(t, "uploads/u1/k", up.StorageKey)
	assert.Equal(t, "tok-1", fake.token)

	resp, err := c.Ingest(ctx, &pb.IngestRequest{Metadata: sra.UploadMetadata{ExpeditionCode: "EXP1", StorageKey: up.StorageKey}})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "sub-1", resp.SubmissionID)
	assert.Equal(t, "EXP1", fake.ingestReq.Metadata.ExpeditionCode)

	subs, err := c.ListSubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "a", subs[0].ID)

	require.NoError(t, c.ResetSubmission(ctx, "a"))
	assert.Equal(t, "a", fake.resetReq.ID)
}

func TestGRPCClient_MapsErrors(t *testing.T) {
	tests := []struct {
		code codes.Code
		want error
	}{
		{codes.Unauthenticated, ErrUnauthorized},
		{codes.NotFound, ErrNotFound},
		{codes.InvalidArgument, ErrBadRequest},
		{codes.Unavailable, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			c := startFake(t, &fakeServer{err: status.Error(tt.code, "nope")}, "tok")

			err := c.ResetSubmission(context.Background(), "a")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("other codes are wrapped", func(t *testing.T) {
		c := startFake(t, &fakeServer{err: status.Error(codes.Internal, "boom")}, "tok")

		_, err := c.RequestUpload(context.Background())
		require.Error(t, err)
		for _, sentinel := range []error{ErrUnauthorized, ErrNotFound, ErrBadRequest, ErrUnavailable} {
			assert.False(t, errors.Is(err, sentinel))
		}
		assert.Equal(t, codes.Internal, status.Code(errors.Unwrap(err)))
	})
}

func TestWithAccessToken_ReplacesExisting(t *testing.T) {
	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "old")
	ctx = withAccessToken(ctx, "new")

	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"new"}, md.Get(common.AccessTokenHeaderName))
}
