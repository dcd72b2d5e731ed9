// Command tokengen mints an access token for a user with the server's secret
// key and token lifetime. It reads the same config sources as the server.
//
//	tokengen -user alice -c server.json
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/seqsubmit/internal/flagx"
	"github.com/dmitrijs2005/seqsubmit/internal/server/auth"
	"github.com/dmitrijs2005/seqsubmit/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	var userID string
	fs := flag.NewFlagSet("tokengen", flag.ExitOnError)
	fs.StringVar(&userID, "user", "", "user ID to put in the token")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-user"}))

	if userID == "" {
		fmt.Fprintln(os.Stderr, "usage: tokengen -user ID [server flags]")
		os.Exit(2)
	}

	token, err := auth.GenerateToken(userID, []byte(cfg.SecretKey), cfg.AccessTokenValidityDuration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
