package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/seqsubmit/internal/common"
	pb "github.com/dmitrijs2005/seqsubmit/internal/proto"
	"github.com/dmitrijs2005/seqsubmit/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// helper to build server
func newTestServer(secret string) *GRPCServer {
	return &GRPCServer{
		logger:      nopLogger{},
		jwtSecret:   []byte(secret),
		uploads:     &fakeUploads{},
		ingest:      &fakeIngest{},
		submissions: &fakeSubmissions{},
	}
}

func withToken(token string) context.Context {
	md := metadata.New(map[string]string{
		common.AccessTokenHeaderName: token,
	})
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer("secret")

	for _, method := range []string{pb.RequestUploadMethod, pb.IngestMethod, pb.ListSubmissionsMethod, pb.ResetSubmissionMethod} {
		info := &grpc.UnaryServerInfo{FullMethod: method}

		h := func(ctx context.Context, req interface{}) (interface{}, error) {
			t.Fatalf("handler should not be called when token missing (%s)", method)
			return nil, nil
		}

		_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
		if status.Code(err) != codes.Unauthenticated {
			t.Fatalf("%s: expected Unauthenticated, got %v", method, status.Code(err))
		}
		if status.Convert(err).Message() != "missing token" {
			t.Fatalf("%s: expected 'missing token', got %q", method, status.Convert(err).Message())
		}
	}
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newTestServer("secret")

	info := &grpc.UnaryServerInfo{FullMethod: pb.IngestMethod}

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called for invalid token")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(withToken("not-a-valid-jwt"), nil, info, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != "invalid token" {
		t.Fatalf("expected 'invalid token', got %q", status.Convert(err).Message())
	}
}

func TestInterceptor_ExpiredToken(t *testing.T) {
	secret := "secret"
	s := newTestServer(secret)

	token, err := auth.GenerateToken("u1", []byte(secret), -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called for expired token")
		return nil, nil
	}

	_, err = s.accessTokenInterceptor(withToken(token), nil, &grpc.UnaryServerInfo{FullMethod: pb.IngestMethod}, h)
	if status.Convert(err).Message() != "token expired" {
		t.Fatalf("expected 'token expired', got %v", err)
	}
}

func TestInterceptor_ValidToken_SetsUserID(t *testing.T) {
	secret := "super-secret"
	s := newTestServer(secret)

	userID := "user-123"
	token, err := auth.GenerateToken(userID, []byte(secret), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	info := &grpc.UnaryServerInfo{FullMethod: pb.IngestMethod}

	var gotFromCtx any
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		gotFromCtx = ctx.Value(UserIDKey)
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(withToken(token), nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
	if gotFromCtx != userID {
		t.Fatalf("user id not propagated in context: got %v want %v", gotFromCtx, userID)
	}
}
