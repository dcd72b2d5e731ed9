package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/dmitrijs2005/seqsubmit/internal/common"
	"github.com/dmitrijs2005/seqsubmit/internal/logging"
	"github.com/dmitrijs2005/seqsubmit/internal/server/models"
)

type state int

const (
	stateConnect state = iota
	stateAuthenticate
	stateCreateRemoteDir
	stateUploadAll
	stateSignalComplete
	stateDisconnect
	stateDone
)

func (s state) String() string {
	switch s {
	case stateConnect:
		return "connect"
	case stateAuthenticate:
		return "authenticate"
	case stateCreateRemoteDir:
		return "create_remote_dir"
	case stateUploadAll:
		return "upload_all"
	case stateSignalComplete:
		return "signal_complete"
	case stateDisconnect:
		return "disconnect"
	case stateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Credentials for the remote file drop.
type Credentials struct {
	User     string
	Password string
	// RootDir is where per-submission directories are created.
	RootDir string
}

// Driver transfers one staged submission to the remote side.
type Driver struct {
	dialer Dialer
	creds  Credentials
	logger logging.Logger
}

func NewDriver(dialer Dialer, creds Credentials, logger logging.Logger) *Driver {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Driver{dialer: dialer, creds: creds, logger: logger.With("module", "transfer")}
}

// transfer carries the per-call protocol state.
type transfer struct {
	sub           *models.Submission
	remote        Remote
	remoteDir     string
	authenticated bool
	err           error
}

// Transfer runs Connect → Authenticate → CreateRemoteDir → UploadAll →
// SignalComplete → Disconnect and returns SUBMITTED only if every step
// succeeded. The error, if any, wraps common.ErrTransferConnect or
// common.ErrTransferUpload. The sentinel file is stored only after all
// uploads succeeded.
func (d *Driver) Transfer(ctx context.Context, sub *models.Submission) (models.Status, error) {
	t := &transfer{
		sub:       sub,
		remoteDir: path.Join(d.creds.RootDir, filepath.Base(sub.SubmissionDir)),
	}
	log := d.logger.With("submission", sub.ID, "remote_dir", t.remoteDir)

	st := stateConnect
	for st != stateDone {
		next := d.step(ctx, st, t)
		if t.err != nil && next != stateDisconnect && next != stateDone {
			next = stateDisconnect
		}
		log.Debug(ctx, "transfer step", "state", st.String(), "next", next.String())
		st = next
	}

	if t.err != nil {
		log.Warn(ctx, "transfer failed", "error", t.err)
		return models.StatusFailed, t.err
	}
	log.Info(ctx, "transfer complete")
	return models.StatusSubmitted, nil
}

func (d *Driver) step(ctx context.Context, st state, t *transfer) state {
	switch st {
	case stateConnect:
		r, err := d.dialer.Dial(ctx)
		if err != nil {
			t.err = fmt.Errorf("%w: dial: %v", common.ErrTransferConnect, err)
			return stateDone
		}
		t.remote = r
		return stateAuthenticate

	case stateAuthenticate:
		if err := t.remote.Login(d.creds.User, d.creds.Password); err != nil {
			t.err = fmt.Errorf("%w: login: %v", common.ErrTransferConnect, err)
			return stateDisconnect
		}
		t.authenticated = true
		return stateCreateRemoteDir

	case stateCreateRemoteDir:
		if err := t.remote.MakeDir(t.remoteDir); err != nil {
			// an existing directory is fine as long as we can enter it
			if cerr := t.remote.ChangeDir(t.remoteDir); cerr != nil {
				t.err = fmt.Errorf("%w: mkdir %s: %v", common.ErrTransferUpload, t.remoteDir, err)
				return stateDisconnect
			}
			return stateUploadAll
		}
		if err := t.remote.ChangeDir(t.remoteDir); err != nil {
			t.err = fmt.Errorf("%w: cd %s: %v", common.ErrTransferUpload, t.remoteDir, err)
			return stateDisconnect
		}
		return stateUploadAll

	case stateUploadAll:
		if err := d.uploadAll(ctx, t); err != nil {
			t.err = fmt.Errorf("%w: %v", common.ErrTransferUpload, err)
			return stateDisconnect
		}
		return stateSignalComplete

	case stateSignalComplete:
		if err := t.remote.Store(common.SentinelFileName, bytes.NewReader(nil)); err != nil {
			t.err = fmt.Errorf("%w: sentinel: %v", common.ErrTransferUpload, err)
		}
		return stateDisconnect

	case stateDisconnect:
		d.disconnect(ctx, t)
		return stateDone
	}
	return stateDone
}

func (d *Driver) uploadAll(ctx context.Context, t *transfer) error {
	names, err := stagedFiles(t.sub.SubmissionDir)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := storeFile(t.remote, t.sub.SubmissionDir, name); err != nil {
			return fmt.Errorf("upload %s: %w", name, err)
		}
	}
	return nil
}

func storeFile(r Remote, dir, name string) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	return r.Store(name, f)
}

func (d *Driver) disconnect(ctx context.Context, t *transfer) {
	if t.remote == nil {
		return
	}
	if t.authenticated {
		if err := t.remote.Logout(); err != nil {
			d.logger.Debug(ctx, "logout failed", "submission", t.sub.ID, "error", err)
		}
	}
	if err := t.remote.Close(); err != nil {
		d.logger.Debug(ctx, "close failed", "submission", t.sub.ID, "error", err)
	}
}

// stagedFiles lists the regular files of dir sorted by name.
func stagedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
