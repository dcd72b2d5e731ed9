package ftpx

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddr(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "ftp-private.ncbi.nlm.nih.gov", want: "ftp-private.ncbi.nlm.nih.gov:21"},
		{in: "ftp.example.org:2121", want: "ftp.example.org:2121"},
		{in: " 10.0.0.1 ", want: "10.0.0.1:21"},
		{in: "::1", want: "[::1]:21"},
		{in: "[::1]", want: "[::1]:21"},
		{in: "[::1]:990", want: "[::1]:990"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NewDialer(tt.in, time.Second).Addr())
		})
	}
}

func TestDeadlineConn_StalledPeerTimesOut(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	c := &deadlineConn{Conn: client, timeout: 20 * time.Millisecond}
	defer c.Close()

	buf := make([]byte, 1)
	_, err := c.Read(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrDeadlineExceeded))
}

func TestDeadlineConn_ActivityExtendsDeadline(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	c := &deadlineConn{Conn: client, timeout: 50 * time.Millisecond}
	defer c.Close()

	go func() {
		for i := 0; i < 4; i++ {
			time.Sleep(20 * time.Millisecond)
			if _, err := server.Write([]byte{byte(i)}); err != nil {
				return
			}
		}
	}()

	buf := make([]byte, 1)
	for i := 0; i < 4; i++ {
		_, err := c.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, byte(i), buf[0])
	}
}

func TestDialer_ConnectionRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	_, err = NewDialer(addr, time.Second).Dial(context.Background())
	assert.Error(t, err)
}

func TestDialer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDialer("127.0.0.1:21", time.Second).Dial(ctx)
	assert.Error(t, err)
}

func TestDialer_GreetingTimeout(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	go func() {
		c, err := l.Accept()
		if err != nil {
			return
		}
		// never send the 220 greeting
		time.Sleep(time.Second)
		c.Close()
	}()

	start := time.Now()
	_, err = NewDialer(l.Addr().String(), 50*time.Millisecond).Dial(context.Background())
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}
