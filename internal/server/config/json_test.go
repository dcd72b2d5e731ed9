package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":             "www.example:9000",
		"metrics_addr":                   ":9999",
		"database_dsn":                   "memory://",
		"secret_key":                     "my_secret_key",
		"access_token_validity_duration": "10m",
		"s3_root_user":                   "user",
		"s3_root_password":               "password",
		"s3_bucket":                      "bucket",
		"s3_region":                      "region",
		"s3_base_endpoint":               "base_endpoint",
		"staging_dir":                    "/data/stage",
		"accepted_suffixes":              []string{"fq", "bam"},
		"dispatch_interval":              "15m",
		"claim_ttl":                      "45m",
		"remote_host":                    "ftp.example.org:2121",
		"remote_user":                    "ftpuser",
		"remote_password":                "ftppass",
		"remote_root_dir":                "submit/Test",
		"remote_timeout":                 30000000000,
		"app_url":                        "https://app.example.org",
		"log_file":                       "server.log",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, ":9999", cfg.MetricsAddr)
		assert.Equal(t, MemoryDSN, cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 10*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, "/data/stage", cfg.StagingDir)
		assert.Equal(t, []string{"fq", "bam"}, cfg.AcceptedSuffixes)
		assert.Equal(t, 15*time.Minute, cfg.DispatchInterval)
		assert.Equal(t, 45*time.Minute, cfg.ClaimTTL)
		assert.Equal(t, "ftp.example.org:2121", cfg.RemoteHost)
		assert.Equal(t, "ftpuser", cfg.RemoteUser)
		assert.Equal(t, "ftppass", cfg.RemotePassword)
		assert.Equal(t, "submit/Test", cfg.RemoteRootDir)
		assert.Equal(t, 30*time.Second, cfg.RemoteTimeout)
		assert.Equal(t, "https://app.example.org", cfg.AppURL)
		assert.Equal(t, "server.log", cfg.LogFile)
	})

	t.Run("short flag", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", pathFlag}

		cfg := &Config{}
		parseJson(cfg)
		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		var cfg, want Config
		cfg.LoadDefaults()
		want.LoadDefaults()
		parseJson(&cfg)

		assert.Equal(t, want, cfg)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{
			"remote_user": "only-this",
		})
		os.Args = []string{"testbin", "-config", partial}

		var cfg Config
		cfg.LoadDefaults()
		parseJson(&cfg)

		assert.Equal(t, "only-this", cfg.RemoteUser)
		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
		assert.Equal(t, time.Hour, cfg.DispatchInterval)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "absent.json")}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
