// Package transport defines the byte streams the HTTP client is handed.
//
// The client never creates sockets itself. It asks a [ConnDialer] for a
// connected stream per request attempt, and the dialer decides how to get
// there (plain TCP, TLS, or an in-memory pipe in tests).
package transport

import (
	"net"
	"strconv"
)

type Addr struct {
	// Scheme tells whether the stream must be secured ("https").
	Scheme string
	// Host is a domain name or an IP literal, without brackets.
	Host string
	Port uint16
}

func (a Addr) Secure() bool { return a.Scheme == "https" }

// String returns "host:port", bracketing IPv6 literals.
func (a Addr) String() string {
	return net.JoinHostPort(a.Host, strconv.FormatUint(uint64(a.Port), 10))
}
