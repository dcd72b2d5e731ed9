package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword and isTerminal are test seams for the x/term calls.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// promptToken reads the access token from the terminal without echo.
func promptToken(w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return "", errNoToken
	}

	if _, err := fmt.Fprint(w, "Access token: "); err != nil {
		return "", err
	}
	b, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}

	tok := strings.TrimSpace(string(b))
	if tok == "" {
		return "", errNoToken
	}
	return tok, nil
}
