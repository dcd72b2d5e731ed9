// Package ftpx adapts github.com/jlaffaye/ftp to the dispatch Remote and
// Dialer interfaces.
package ftpx

import (
	"context"
	"io"
	"net"
	"strings"
	"time"

	"github.com/dmitrijs2005/seqsubmit/internal/server/dispatch"
	"github.com/jlaffaye/ftp"
)

// DefaultPort is used when the configured host carries no port.
const DefaultPort = "21"

// Dialer opens FTP sessions to a single host.
type Dialer struct {
	addr    string
	timeout time.Duration
}

var _ dispatch.Dialer = (*Dialer)(nil)

// NewDialer returns a Dialer for host ("host" or "host:port"). timeout bounds
// the connect and every idle read or write on control and data connections;
// zero disables it.
func NewDialer(host string, timeout time.Duration) *Dialer {
	return &Dialer{addr: normalizeAddr(host), timeout: timeout}
}

// Addr reports the host:port the Dialer connects to.
func (d *Dialer) Addr() string {
	return d.addr
}

// Dial connects and reads the server greeting. Login is left to the caller.
func (d *Dialer) Dial(ctx context.Context) (dispatch.Remote, error) {
	conn, err := ftp.Dial(d.addr,
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(d.timeout),
		ftp.DialWithDialFunc(d.dialFunc(ctx)),
	)
	if err != nil {
		return nil, err
	}
	return &remote{conn: conn}, nil
}

// dialFunc is used by the ftp package for the control connection and every
// passive data connection.
func (d *Dialer) dialFunc(ctx context.Context) func(network, address string) (net.Conn, error) {
	return func(network, address string) (net.Conn, error) {
		nd := &net.Dialer{Timeout: d.timeout}
		c, err := nd.DialContext(ctx, network, address)
		if err != nil {
			return nil, err
		}
		if d.timeout <= 0 {
			return c, nil
		}
		return &deadlineConn{Conn: c, timeout: d.timeout}, nil
	}
}

func normalizeAddr(host string) string {
	host = strings.TrimSpace(host)
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(strings.Trim(host, "[]"), DefaultPort)
}

// deadlineConn pushes the connection deadline forward before every Read and
// Write, so only a stall longer than timeout fails.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func (c *deadlineConn) Write(p []byte) (int, error) {
	if err := c.Conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}

// remote is a logged-in or not yet logged-in FTP session.
type remote struct {
	conn *ftp.ServerConn
}

func (r *remote) Login(user, password string) error {
	return r.conn.Login(user, password)
}

func (r *remote) MakeDir(path string) error {
	return r.conn.MakeDir(path)
}

func (r *remote) ChangeDir(path string) error {
	return r.conn.ChangeDir(path)
}

func (r *remote) Store(name string, data io.Reader) error {
	return r.conn.Stor(name, data)
}

func (r *remote) Logout() error {
	return r.conn.Logout()
}

// Close sends QUIT and closes the control connection.
func (r *remote) Close() error {
	return r.conn.Quit()
}
