package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/seqsubmit/internal/client/client"
	"github.com/dmitrijs2005/seqsubmit/internal/client/config"
	"github.com/dmitrijs2005/seqsubmit/internal/netx"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// newClient is swapped in tests.
var newClient = func(cfg *config.Config) (client.Client, error) {
	return client.NewSubmissionClient(cfg.ServerEndpointAddr, cfg.AccessToken)
}

// uploadArchive is swapped in tests.
var uploadArchive = netx.UploadToPresignedURL

var errNoToken = errors.New("no access token: use --token, the config file or " + config.TokenEnvVar)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	addr       string
	token      string
	timeout    time.Duration
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "seqsubmit",
		Short: "Submit raw sequence archives for delivery to the SRA",
		Long: `seqsubmit uploads an archive of raw read files together with the
sample metadata it belongs to. The server checks the archive, stages it with a
submission.xml manifest and delivers it to the remote archive on its next
dispatch pass.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to JSON config file")
	root.PersistentFlags().StringVarP(&opts.addr, "addr", "a", "", "server address (host:port)")
	root.PersistentFlags().StringVarP(&opts.token, "token", "t", "", "access token")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "overall timeout for the command")

	root.AddCommand(newSubmitCommand(opts))
	root.AddCommand(newListCommand(opts))
	root.AddCommand(newResetCommand(opts))

	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}

// session resolves the effective config and opens a client. The caller
// closes the client.
func (o *globalOptions) session(cmd *cobra.Command) (client.Client, *config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.ServerEndpointAddr = o.addr
	}
	if flags.Changed("token") {
		cfg.AccessToken = o.token
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = o.timeout
	}

	if cfg.AccessToken == "" {
		tok, err := promptToken(cmd.ErrOrStderr())
		if err != nil {
			return nil, nil, err
		}
		cfg.AccessToken = tok
	}

	c, err := newClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", cfg.ServerEndpointAddr, err)
	}
	return c, cfg, nil
}
