// Package tcp dials real TCP connections, secured with TLS for "https".
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-4.3.3
package tcp

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"http-client/transport"

	"github.com/pkg/errors"
)

// Options configures a [Dialer].
// Dial and handshake are bounded by the context given to [Dialer.Dial].
type Options struct {
	// InsecureSkipVerify disables certificate and host name verification.
	InsecureSkipVerify bool

	// TLSConfig is cloned for every secure dial.
	// ServerName defaults to the host being dialed.
	TLSConfig *tls.Config
}

type Dialer struct {
	opts Options
}

var _ transport.ConnDialer = (*Dialer)(nil)

func NewDialer(opts Options) *Dialer {
	return &Dialer{opts: opts}
}

func (d *Dialer) Dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	var nd net.Dialer
	raw, err := nd.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", addr)
	}

	if !addr.Secure() {
		return &conn{Conn: raw}, nil
	}

	tlsConn := tls.Client(raw, d.tlsConfig(addr.Host))
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, &transport.HandshakeError{Addr: addr, Cause: err}
	}

	return &conn{Conn: tlsConn}, nil
}

func (d *Dialer) tlsConfig(host string) *tls.Config {
	var cfg *tls.Config
	if d.opts.TLSConfig != nil {
		cfg = d.opts.TLSConfig.Clone()
	} else {
		cfg = &tls.Config{}
	}

	if cfg.ServerName == "" {
		cfg.ServerName = host
	}
	if d.opts.InsecureSkipVerify {
		cfg.InsecureSkipVerify = true
	}
	return cfg
}

// conn adapts a [net.Conn].
type conn struct {
	net.Conn
}

var _ transport.Conn = (*conn)(nil)

// Setting a deadline only fails on a closed conn, where the next
// read or write reports it anyway.
func (c *conn) SetReadDeadLine(t time.Time)  { _ = c.Conn.SetReadDeadline(t) }
func (c *conn) SetWriteDeadLine(t time.Time) { _ = c.Conn.SetWriteDeadline(t) }

func (c *conn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if errors.Is(err, net.ErrClosed) {
		return n, transport.ErrConnClosed
	}
	return n, err
}

func (c *conn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	if errors.Is(err, net.ErrClosed) {
		return n, transport.ErrConnClosed
	}
	return n, err
}
