package client

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"

	"http-client/application/http"
	"http-client/application/http/content"
	"http-client/application/http/fault"
	"http-client/application/http/semantic"
	"http-client/application/http/semantic/status"
	"http-client/application/http/transfer"
	"http-client/application/util/uri"
	"http-client/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// Client sends requests one hop at a time.
//
// Every hop gets its own connection from the dialer, which is closed
// together with the response body. A Client holds no per-request state,
// so it may be shared between goroutines as long as the dialer allows it.
type Client struct {
	dialer transport.ConnDialer

	opts Options

	logger *slog.Logger
	clock  clock.Clock
}

func New(
	d transport.ConnDialer,
	logger *slog.Logger,
	clock clock.Clock,
	opts Options,
) *Client {
	return &Client{
		dialer: d,
		logger: logger,
		clock:  clock,
		opts:   opts,
	}
}

// Send sends request and follows redirects as configured.
//
// The returned response body must be closed. Every error carries a [*fault.Error].
func (c *Client) Send(ctx context.Context, request *semantic.Request) (*semantic.Response, error) {
	if request.Method == semantic.MethodConnect {
		return nil, fault.New(fault.KindConnectNotSupported, nil)
	}

	addr, kind, err := targetAddr(request.URI)
	if err != nil {
		return nil, fault.New(kind, err)
	}

	req := request.Clone()
	budget := c.opts.Redirect.Max

	for {
		res, err := c.roundtrip(ctx, req, addr)
		if err != nil {
			return nil, err
		}

		target, ok, err := c.redirectTarget(req, res)
		if err != nil {
			res.Close()
			return nil, err
		}
		if !ok {
			return res, nil
		}

		nextAddr, _, err := targetAddr(target)
		if err != nil {
			res.Close()
			return nil, fault.InvalidResponse(fault.ResponseRedirectionURL, err)
		}

		if budget == 0 {
			res.Close()
			return nil, fault.New(
				fault.KindTooManyRedirections,
				errors.Errorf("redirect budget of %d exhausted", c.opts.Redirect.Max),
			)
		}
		budget--

		// The body of a redirect is of no use.
		if err := res.Close(); err != nil {
			c.logger.Debug("closing redirect response", slog.String("error", err.Error()))
		}

		c.logger.Debug("following redirect",
			slog.Uint64("status", uint64(res.Status.Code)),
			slog.String("from", req.URI.String()),
			slog.String("to", target.String()),
			slog.Uint64("remaining", uint64(budget)),
		)

		req = req.Redirected(target)
		addr = nextAddr
	}
}

// redirectTarget decides whether res redirects req, and to where.
// ok is false when res must be handed to the caller as it is.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.4
func (c *Client) redirectTarget(req *semantic.Request, res *semantic.Response) (_ uri.URI, ok bool, _ error) {
	if !c.opts.Redirect.Follow || !res.Status.IsRedirection() {
		return uri.URI{}, false, nil
	}

	location, found := res.Headers.Get("Location")
	if !found {
		// e.g. 300 Multiple Choices or 304 Not Modified.
		return uri.URI{}, false, nil
	}

	location = strings.TrimSpace(location)
	if location == "" {
		return uri.URI{}, false, fault.InvalidResponse(fault.ResponseLocationHeader, errors.New("Location is empty"))
	}

	ref, err := uri.Parse(location)
	if err != nil {
		return uri.URI{}, false, fault.InvalidResponse(
			fault.ResponseLocationHeader,
			errors.Wrapf(err, "parsing Location %q", location),
		)
	}

	resolver, err := uri.NewRefResolver(req.URI)
	if err != nil {
		return uri.URI{}, false, fault.InvalidResponse(fault.ResponseRedirectionURL, err)
	}

	target := resolver.Resolve(ref)
	// Fragments are never sent.
	target.Fragment = nil

	return target, true, nil
}

// roundtrip runs a single hop.
func (c *Client) roundtrip(ctx context.Context, req *semantic.Request, addr transport.Addr) (*semantic.Response, error) {
	start := c.clock.Now()

	conn, err := c.dial(ctx, addr)
	if err != nil {
		return nil, err
	}

	res, err := c.exchange(conn, req)
	if err != nil {
		conn.Close()
		return nil, err
	}

	c.logger.Debug("received response",
		slog.String("method", string(req.Method)),
		slog.String("url", req.URI.String()),
		slog.Uint64("status", uint64(res.Status.Code)),
		slog.Duration("elapsed", c.clock.Since(start)),
	)

	return res, nil
}

func (c *Client) dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	if c.opts.Timeout.Connect > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout.Connect)
		defer cancel()
	}

	conn, err := c.dialer.Dial(ctx, addr)
	if err != nil {
		err = errors.Wrapf(err, "connecting to %s", addr)

		var hsErr *transport.HandshakeError
		if errors.As(err, &hsErr) {
			return nil, fault.TLS(err)
		}
		return nil, fault.IO(err)
	}

	return conn, nil
}

// maxInterimResponses bounds the 1xx responses skipped before the final one.
const maxInterimResponses = 16

// exchange writes req on conn and reads the response head.
// The body is left on conn to be read lazily.
func (c *Client) exchange(conn transport.Conn, req *semantic.Request) (*semantic.Response, error) {
	if d := c.opts.Timeout.Write; d > 0 {
		conn.SetWriteDeadLine(c.clock.Now().Add(d))
	}

	enc := http.NewRequestEncoder(conn, c.opts.Send.Encode)
	if err := enc.Encode(wireRequest(req).RawRequest()); err != nil {
		return nil, fault.IO(errors.Wrap(err, "sending request"))
	}

	if d := c.opts.Timeout.Read; d > 0 {
		conn.SetReadDeadLine(c.clock.Now().Add(d))
	}

	dec := http.NewResponseDecoder(bufio.NewReader(conn), c.opts.Receive.Decode)

	var raw http.Response
	for interim := 0; ; interim++ {
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrap(err, "receiving response")
		}

		// Interim responses precede the final one and carry no content.
		// Switching Protocols is final for this client.
		// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.2
		st := status.Status{Code: raw.StatusCode}
		if !st.IsInformational() || st.Code == status.SwitchingProtocols.Code {
			break
		}
		if interim == maxInterimResponses {
			return nil, fault.InvalidResponse(
				fault.ResponseStatusLine,
				errors.Errorf("more than %d interim responses", maxInterimResponses),
			)
		}
		c.logger.Debug("skipping interim response", slog.Uint64("status", uint64(raw.StatusCode)))
	}

	res := semantic.ResponseFrom(&raw)
	res.URI = req.URI.Clone()

	framing, err := transfer.FramingFor(req.Method, res.Status, res.Headers)
	if err != nil {
		return nil, errors.Wrap(err, "deciding body framing")
	}

	coding := content.Select(req.Method, res.Headers)

	c.logger.Debug("reading body",
		slog.String("framing", framing.String()),
		slog.String("coding", string(coding)),
	)

	res.Body = &body{
		ReadCloser: content.NewReader(transfer.NewBodyReader(dec.MessageDecoder, framing), coding),
		conn:       conn,
	}

	return res, nil
}

// wireRequest adds the fields the client always sends.
func wireRequest(req *semantic.Request) *semantic.Request {
	wire := req.Clone()

	if !wire.Headers.Has("Accept-Encoding") {
		wire.Headers.Set("Accept-Encoding", content.AcceptEncoding)
	}
	// One connection per hop.
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-9.6
	wire.Headers.Set("Connection", "close")

	return wire
}

// body closes the connection of its hop along with the decoder.
type body struct {
	io.ReadCloser
	conn transport.Conn

	closed bool
}

func (b *body) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	decErr := b.ReadCloser.Close()
	if err := b.conn.Close(); err != nil {
		return fault.IO(errors.Wrap(err, "closing connection"))
	}
	if decErr != nil {
		return fault.IO(errors.Wrap(decErr, "closing decoder"))
	}
	return nil
}
