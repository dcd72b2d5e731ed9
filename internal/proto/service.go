// Package proto describes the seqsubmit.v1.SubmissionService RPC surface.
// Every request and response travels as a google.protobuf.Struct; the Go
// message types in messages.go are converted with Encode and Decode.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "seqsubmit.v1.SubmissionService"

// Full method names as seen by interceptors.
const (
	RequestUploadMethod   = "/" + ServiceName + "/RequestUpload"
	IngestMethod          = "/" + ServiceName + "/Ingest"
	ListSubmissionsMethod = "/" + ServiceName + "/ListSubmissions"
	ResetSubmissionMethod = "/" + ServiceName + "/ResetSubmission"
)

// SubmissionServiceServer is implemented by the server.
type SubmissionServiceServer interface {
	RequestUpload(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ingest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSubmissions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResetSubmission(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterSubmissionServiceServer(s grpc.ServiceRegistrar, srv SubmissionServiceServer) {
	s.RegisterService(&SubmissionService_ServiceDesc, srv)
}

type unaryCall func(SubmissionServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SubmissionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(SubmissionServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var SubmissionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SubmissionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RequestUpload",
			Handler:    unaryHandler(RequestUploadMethod, SubmissionServiceServer.RequestUpload),
		},
		{
			MethodName: "Ingest",
			Handler:    unaryHandler(IngestMethod, SubmissionServiceServer.Ingest),
		},
		{
			MethodName: "ListSubmissions",
			Handler:    unaryHandler(ListSubmissionsMethod, SubmissionServiceServer.ListSubmissions),
		},
		{
			MethodName: "ResetSubmission",
			Handler:    unaryHandler(ResetSubmissionMethod, SubmissionServiceServer.ResetSubmission),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "seqsubmit/v1/submission.proto",
}

// SubmissionServiceClient calls the service over a client connection.
type SubmissionServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSubmissionServiceClient(cc grpc.ClientConnInterface) *SubmissionServiceClient {
	return &SubmissionServiceClient{cc: cc}
}

func (c *SubmissionServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SubmissionServiceClient) RequestUpload(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RequestUploadMethod, in, opts...)
}

func (c *SubmissionServiceClient) Ingest(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, IngestMethod, in, opts...)
}

func (c *SubmissionServiceClient) ListSubmissions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ListSubmissionsMethod, in, opts...)
}

func (c *SubmissionServiceClient) ResetSubmission(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ResetSubmissionMethod, in, opts...)
}
