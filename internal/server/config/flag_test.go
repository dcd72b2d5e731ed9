package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-m", ":9100", "-d", "db", "-s", "secret", "-t", "5",
			"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
			"-w", "/var/stage", "-x", "fq, bam,,cram", "-i", "30", "-y", "90",
			"-f", "ftp.example.org", "-l", "ftpuser", "-k", "ftppass", "-r", "submit/Test", "-o", "15",
			"-n", "https://app.example.org", "-j", "/var/log/seqsubmit.json",
		}, expected: &Config{
			EndpointAddrGRPC:            "127.0.0.1:9090",
			MetricsAddr:                 ":9100",
			DatabaseDSN:                 "db",
			SecretKey:                   "secret",
			AccessTokenValidityDuration: 5 * time.Minute,
			S3RootUser:                  "user",
			S3RootPassword:              "password",
			S3Bucket:                    "bucket",
			S3Region:                    "us-west-1",
			S3BaseEndpoint:              "http://endpoint",
			StagingDir:                  "/var/stage",
			AcceptedSuffixes:            []string{"fq", "bam", "cram"},
			DispatchInterval:            30 * time.Minute,
			ClaimTTL:                    90 * time.Minute,
			RemoteHost:                  "ftp.example.org",
			RemoteUser:                  "ftpuser",
			RemotePassword:              "ftppass",
			RemoteRootDir:               "submit/Test",
			RemoteTimeout:               15 * time.Second,
			AppURL:                      "https://app.example.org",
			LogFile:                     "/var/log/seqsubmit.json",
		}},
		{name: "bad integer", args: []string{"cmd", "-i", "soon"}, expectPanic: true},
	}

	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

func TestParseFlags_KeepsDefaultsWithoutFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd", "-c", "ignored.json"}

	var want, got Config
	want.LoadDefaults()
	got.LoadDefaults()

	parseFlags(&got)
	assert.Empty(t, cmp.Diff(want, got))
}
