// Package dispatch delivers READY submissions to the remote archive: Driver
// runs the transfer protocol for one submission and Scheduler runs passes
// over all of them on a fixed delay.
package dispatch

import (
	"context"
	"io"
)

// Remote is an open session with the archive's file drop.
type Remote interface {
	Login(user, password string) error
	MakeDir(path string) error
	ChangeDir(path string) error
	// Store uploads r as name in the current directory.
	Store(name string, r io.Reader) error
	Logout() error
	Close() error
}

// Dialer opens Remote sessions.
type Dialer interface {
	Dial(ctx context.Context) (Remote, error)
}
