// Package config loads runtime configuration for the seqsubmit CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with --config / -c.
//  3. The SEQSUBMIT_TOKEN environment variable for the access token.
//  4. Command-line flags bound by the cli package, which override earlier values.
//
// # JSON schema
//
// The JSON loader uses timex.Duration, so the timeout can be either a string
// like "30s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "access_token": "eyJ...",
//	  "request_timeout": "2m"
//	}
package config
