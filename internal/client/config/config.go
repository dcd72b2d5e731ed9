package config

import (
	"os"
	"time"
)

// TokenEnvVar names the environment variable consulted for the access token.
const TokenEnvVar = "SEQSUBMIT_TOKEN"

// Config holds runtime settings for the seqsubmit CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - AccessToken: JWT sent with every call; prompted for when empty.
//   - RequestTimeout: upper bound for one command including the upload.
type Config struct {
	ServerEndpointAddr string
	AccessToken        string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Minute
}

// LoadConfig applies defaults, then the JSON file at jsonPath (if any), then
// the token from the environment.
func LoadConfig(jsonPath string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, jsonPath); err != nil {
		return nil, err
	}
	if tok := os.Getenv(TokenEnvVar); tok != "" {
		cfg.AccessToken = tok
	}
	return cfg, nil
}
