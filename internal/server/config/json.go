package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/seqsubmit/internal/flagx"
	"github.com/dmitrijs2005/seqsubmit/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. Fields left out of the file keep their current value in Config.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	MetricsAddr                 string         `json:"metrics_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	StagingDir                  string         `json:"staging_dir"`
	AcceptedSuffixes            []string       `json:"accepted_suffixes"`
	DispatchInterval            timex.Duration `json:"dispatch_interval"`
	ClaimTTL                    timex.Duration `json:"claim_ttl"`
	RemoteHost                  string         `json:"remote_host"`
	RemoteUser                  string         `json:"remote_user"`
	RemotePassword              string         `json:"remote_password"`
	RemoteRootDir               string         `json:"remote_root_dir"`
	RemoteTimeout               timex.Duration `json:"remote_timeout"`
	AppURL                      string         `json:"app_url"`
	LogFile                     string         `json:"log_file"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flag into config. Without the flag nothing is loaded. An unreadable
// file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.StagingDir, c.StagingDir)
	if len(c.AcceptedSuffixes) > 0 {
		config.AcceptedSuffixes = c.AcceptedSuffixes
	}
	setDuration(&config.DispatchInterval, c.DispatchInterval)
	setDuration(&config.ClaimTTL, c.ClaimTTL)
	setString(&config.RemoteHost, c.RemoteHost)
	setString(&config.RemoteUser, c.RemoteUser)
	setString(&config.RemotePassword, c.RemotePassword)
	setString(&config.RemoteRootDir, c.RemoteRootDir)
	setDuration(&config.RemoteTimeout, c.RemoteTimeout)
	setString(&config.AppURL, c.AppURL)
	setString(&config.LogFile, c.LogFile)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
