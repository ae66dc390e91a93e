package client

import (
	"strings"

	"http-client/application/http/fault"
	"http-client/application/http/semantic"
	"http-client/application/util/uri"
	"http-client/transport"

	"github.com/pkg/errors"
)

// ParseURL parses an absolute http(s) URL the client can send to.
func ParseURL(raw string) (uri.URI, error) {
	u, err := uri.Parse(raw)
	if err != nil {
		switch {
		case errors.Is(err, uri.ErrInvalidHost):
			return uri.URI{}, fault.New(fault.KindInvalidURLHost, err)
		case errors.Is(err, uri.ErrInvalidPort):
			return uri.URI{}, fault.New(fault.KindInvalidURLPort, err)
		}
		return uri.URI{}, fault.New(fault.KindInvalidBaseURL, err)
	}

	if _, kind, err := targetAddr(u); err != nil {
		return uri.URI{}, fault.New(kind, err)
	}

	return u, nil
}

// targetAddr tells where to dial for u.
// On failure, kind tells which part of u is unusable.
func targetAddr(u uri.URI) (_ transport.Addr, kind fault.Kind, _ error) {
	if u.IsRelativeRef() {
		return transport.Addr{}, fault.KindInvalidBaseURL, errors.Errorf("URL is not absolute: %q", u.String())
	}

	defPort, ok := semantic.DefaultPort(u.Scheme)
	if !ok {
		return transport.Addr{}, fault.KindInvalidBaseURL, errors.Errorf("unsupported scheme %q", u.Scheme)
	}

	host := u.Host()
	if host == "" {
		return transport.Addr{}, fault.KindInvalidURLHost, errors.New("host is empty")
	}
	if !uri.IsDomainName(host) {
		return transport.Addr{}, fault.KindInvalidURLHost, errors.Errorf("host is not a valid domain name: %q", host)
	}

	port, ok := u.Port()
	if !ok {
		port = defPort
	}
	if port == 0 {
		return transport.Addr{}, fault.KindInvalidURLPort, errors.New("port 0 cannot be dialed")
	}

	// Brackets are URI syntax, not part of the address.
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")

	return transport.Addr{Scheme: u.Scheme, Host: host, Port: port}, 0, nil
}
