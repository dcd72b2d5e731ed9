// Package common contains shared constants and sentinel errors used across
// seqsubmit components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// SentinelFileName is the zero-length marker uploaded to the remote
// submission directory once every staged file has been transferred.
const SentinelFileName = "submit.ready"

// ManifestFileName is the name of the manifest document written into every
// staging directory.
const ManifestFileName = "submission.xml"
