package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/seqsubmit/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-m string   metrics bind address
//	-d string   PostgreSQL DSN or memory://
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-w string   staging directory
//	-x string   accepted suffixes, comma separated
//	-i int      dispatch interval, minutes
//	-y int      dispatch claim TTL, minutes
//	-f string   FTP host
//	-l string   FTP user
//	-k string   FTP password
//	-r string   FTP root directory
//	-o int      FTP idle timeout, seconds
//	-n string   application URL
//	-j string   log file
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and converted to time.Duration.
//     They only replace the current value when given explicitly, so
//     sub-minute durations from the JSON file survive the flag pass.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-m", "-d", "-s", "-t", "-u", "-p", "-b", "-g", "-e",
		"-w", "-x", "-i", "-y", "-f", "-l", "-k", "-r", "-o", "-n", "-j",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to serve metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.StagingDir, "w", config.StagingDir, "staging directory")
	suffixes := fs.String("x", strings.Join(config.AcceptedSuffixes, ","), "accepted file suffixes (comma separated)")

	dispatchInterval := fs.Int("i", int(config.DispatchInterval.Minutes()), "dispatch interval (in minutes)")
	claimTTL := fs.Int("y", int(config.ClaimTTL.Minutes()), "dispatch claim ttl (in minutes)")

	fs.StringVar(&config.RemoteHost, "f", config.RemoteHost, "FTP host")
	fs.StringVar(&config.RemoteUser, "l", config.RemoteUser, "FTP user")
	fs.StringVar(&config.RemotePassword, "k", config.RemotePassword, "FTP password")
	fs.StringVar(&config.RemoteRootDir, "r", config.RemoteRootDir, "FTP root directory")
	remoteTimeout := fs.Int("o", int(config.RemoteTimeout.Seconds()), "FTP idle timeout (in seconds)")

	fs.StringVar(&config.AppURL, "n", config.AppURL, "application URL")
	fs.StringVar(&config.LogFile, "j", config.LogFile, "log file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["t"] {
		config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	}
	if set["x"] {
		config.AcceptedSuffixes = flagx.SplitList(*suffixes)
	}
	if set["i"] {
		config.DispatchInterval = time.Duration(*dispatchInterval) * time.Minute
	}
	if set["y"] {
		config.ClaimTTL = time.Duration(*claimTTL) * time.Minute
	}
	if set["o"] {
		config.RemoteTimeout = time.Duration(*remoteTimeout) * time.Second
	}
}
