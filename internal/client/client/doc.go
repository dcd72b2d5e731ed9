// Package client talks to the seqsubmit server.
//
// GRPCClient wraps the SubmissionService connection: it attaches the access
// token to every call through a unary interceptor, converts requests and
// responses to and from their Struct form, and maps gRPC status codes to the
// sentinel errors in errors.go so callers can match them with errors.Is.
package client
