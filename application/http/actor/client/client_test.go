package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"http-client/application/http"
	"http-client/application/http/fault"
	"http-client/application/http/semantic"
	"http-client/application/http/semantic/status"
	"http-client/application/http/transfer"
	"http-client/application/util/uri"
	"http-client/transport"
	"http-client/transport/pipe"

	"github.com/benbjohnson/clock"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

// exchange is what the in-memory server received.
type exchange struct {
	line    http.RequestLine
	headers semantic.Headers
	body    []byte
}

type handler func(ex exchange, w io.Writer)

func respond(raw string) handler {
	return func(_ exchange, w io.Writer) { io.WriteString(w, raw) }
}

type ClientTestSuite struct {
	suite.Suite

	clock  *clock.Mock
	dialer *pipe.Dialer
	logger *slog.Logger

	wg        sync.WaitGroup
	listeners []*pipe.Listener

	mu       sync.Mutex
	received []exchange
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) SetupTest() {
	s.clock = clock.NewMock()
	s.dialer = pipe.NewDialer(s.clock)
	s.logger = slog.New(slog.DiscardHandler)
	s.listeners = nil
	s.received = nil
}

func (s *ClientTestSuite) TearDownTest() {
	for _, lis := range s.listeners {
		lis.Close()
	}
	s.wg.Wait()
	goleak.VerifyNone(s.T())
}

func (s *ClientTestSuite) newClient(opts Options) *Client {
	return New(s.dialer, s.logger, s.clock, opts)
}

func (s *ClientTestSuite) request(method semantic.Method, rawURL string, body []byte) *semantic.Request {
	u, err := ParseURL(rawURL)
	s.Require().NoError(err)
	return semantic.NewRequest(method, u, body)
}

func addr(scheme, host string, port uint16) transport.Addr {
	return transport.Addr{Scheme: scheme, Host: host, Port: port}
}

// listen serves every connection to a with h, one request per connection.
func (s *ClientTestSuite) listen(a transport.Addr, h handler) {
	lis, err := s.dialer.Listen(a)
	s.Require().NoError(err)
	s.listeners = append(s.listeners, lis)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := lis.Accept(context.Background())
			if err != nil {
				return
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.serve(conn, h)
			}()
		}
	}()
}

func (s *ClientTestSuite) serve(conn transport.Conn, h handler) {
	defer conn.Close()

	dec := http.NewRequestDecoder(conn, http.DefaultDecodeOptions)

	var req http.Request
	if err := dec.Decode(&req); err != nil {
		return
	}

	ex := exchange{line: req.RequestLine, headers: semantic.HeadersFrom(req.Headers)}
	if v, ok := ex.headers.Get("Content-Length"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return
		}
		ex.body = make([]byte, n)
		if _, err := io.ReadFull(dec.Reader(), ex.body); err != nil {
			return
		}
	}

	s.mu.Lock()
	s.received = append(s.received, ex)
	s.mu.Unlock()

	h(ex, conn)
}

func (s *ClientTestSuite) exchanges() []exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]exchange(nil), s.received...)
}

func (s *ClientTestSuite) readBody(res *semantic.Response) string {
	b, err := io.ReadAll(res.Body)
	s.Require().NoError(err)
	s.Require().NoError(res.Close())
	return string(b)
}

func (s *ClientTestSuite) TestSend() {
	s.listen(addr("http", "example.com", 80), respond(
		"HTTP/1.1 200 OK\r\nContent-Length: 5\r\nX-Test: yes\r\n\r\nHello",
	))

	res, err := s.newClient(DefaultOptions()).Send(context.Background(), s.request(semantic.MethodGet, "http://example.com/path?q=1", nil))
	s.Require().NoError(err)

	s.Equal(status.OK, res.Status)
	s.Equal(http.Version{1, 1}, res.Version)
	s.Equal("http://example.com/path?q=1", res.URI.String())
	v, ok := res.Headers.Get("x-test")
	s.True(ok)
	s.Equal("yes", v)
	s.Equal("Hello", s.readBody(res))

	got := s.exchanges()
	s.Require().Len(got, 1)
	s.Equal(http.RequestLine{Method: "GET", Target: "/path?q=1", Version: http.Version{1, 1}}, got[0].line)

	host, _ := got[0].headers.Get("Host")
	s.Equal("example.com", host)
	conn, _ := got[0].headers.Get("Connection")
	s.Equal("close", conn)
	enc, _ := got[0].headers.Get("Accept-Encoding")
	s.Equal("gzip, deflate", enc)
	s.False(got[0].headers.Has("Content-Length"))
}

func (s *ClientTestSuite) TestSendKeepsAcceptEncoding() {
	s.listen(addr("http", "example.com", 80), respond("HTTP/1.1 204 No Content\r\n\r\n"))

	req := s.request(semantic.MethodGet, "http://example.com/", nil)
	req.Headers.Set("Accept-Encoding", "identity")

	res, err := s.newClient(DefaultOptions()).Send(context.Background(), req)
	s.Require().NoError(err)
	s.Equal("", s.readBody(res))

	got := s.exchanges()
	s.Require().Len(got, 1)
	values, _ := got[0].headers.Values("Accept-Encoding")
	s.Equal([]string{"identity"}, values)
}

func (s *ClientTestSuite) TestSendPost() {
	s.listen(addr("http", "example.com", 8080), func(ex exchange, w io.Writer) {
		fmt.Fprintf(w, "HTTP/1.1 201 Created\r\nContent-Length: %d\r\n\r\n%s", len(ex.body), ex.body)
	})

	req := s.request(semantic.MethodPost, "http://example.com:8080/items", []byte("payload"))
	res, err := s.newClient(DefaultOptions()).Send(context.Background(), req)
	s.Require().NoError(err)

	s.Equal(status.Created, res.Status)
	s.Equal("payload", s.readBody(res))

	got := s.exchanges()
	s.Require().Len(got, 1)
	host, _ := got[0].headers.Get("Host")
	s.Equal("example.com:8080", host)
	length, _ := got[0].headers.Get("Content-Length")
	s.Equal("7", length)
}

func (s *ClientTestSuite) TestConcurrentSends() {
	s.listen(addr("http", "example.com", 80), func(ex exchange, w io.Writer) {
		fmt.Fprintf(w, "HTTP/1.1 200 OK\r\n\r\n%s", ex.line.Target)
	})

	c := s.newClient(DefaultOptions())

	var wg sync.WaitGroup
	defer wg.Wait()
	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			target := "/" + strconv.Itoa(i)

			res, err := c.Send(context.Background(), s.request(semantic.MethodGet, "http://example.com"+target, nil))
			s.Require().NoError(err)

			b, err := io.ReadAll(res.Body)
			s.NoError(err)
			s.Equal(target, string(b))
			s.NoError(res.Close())
		}()
	}
}

func (s *ClientTestSuite) TestRedirectRelative() {
	s.listen(addr("http", "example.com", 80), func(ex exchange, w io.Writer) {
		if ex.line.Target == "/a/b" {
			io.WriteString(w, "HTTP/1.1 307 Temporary Redirect\r\nLocation: ../c/./d?x=1#frag\r\nContent-Length: 4\r\n\r\nmove")
			return
		}
		fmt.Fprintf(w, "HTTP/1.1 200 OK\r\nContent-Length: %d\r\n\r\n%s", len(ex.body), ex.body)
	})

	req := s.request(semantic.MethodPut, "http://example.com/a/b", []byte("data"))
	res, err := s.newClient(DefaultOptions()).Send(context.Background(), req)
	s.Require().NoError(err)

	s.Equal(status.OK, res.Status)
	s.Equal("http://example.com/c/d?x=1", res.URI.String())
	s.Equal("data", s.readBody(res))

	got := s.exchanges()
	s.Require().Len(got, 2)
	s.Equal("PUT", got[1].line.Method)
	s.Equal("/c/d?x=1", got[1].line.Target)
	s.Equal([]byte("data"), got[1].body)

	// The caller's request is left alone.
	s.Equal("http://example.com/a/b", req.URI.String())
}

func (s *ClientTestSuite) TestRedirectToOtherHost() {
	s.listen(addr("http", "example.com", 80), respond(
		"HTTP/1.1 301 Moved Permanently\r\nLocation: http://other.example:8080/landing\r\n\r\n",
	))
	s.listen(addr("http", "other.example", 8080), respond(
		"HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok",
	))

	res, err := s.newClient(DefaultOptions()).Send(context.Background(), s.request(semantic.MethodGet, "http://example.com/", nil))
	s.Require().NoError(err)
	s.Equal("ok", s.readBody(res))

	got := s.exchanges()
	s.Require().Len(got, 2)
	host, _ := got[1].headers.Get("Host")
	s.Equal("other.example:8080", host)
	s.Equal("/landing", got[1].line.Target)
}

// hops redirects /hop/0 through /hop/k, then answers 200.
func hops(k int) handler {
	return func(ex exchange, w io.Writer) {
		n, _ := strconv.Atoi(strings.TrimPrefix(ex.line.Target, "/hop/"))
		if n < k {
			fmt.Fprintf(w, "HTTP/1.1 302 Found\r\nLocation: /hop/%d\r\nContent-Length: 0\r\n\r\n", n+1)
			return
		}
		io.WriteString(w, "HTTP/1.1 200 OK\r\nContent-Length: 4\r\n\r\ndone")
	}
}

func (s *ClientTestSuite) TestRedirectKeepsEncoding() {
	s.listen(addr("http", "example.com", 80), func(ex exchange, w io.Writer) {
		switch ex.line.Target {
		case "/start":
			io.WriteString(w, "HTTP/1.1 302 Found\r\nLocation: /cb?token=a%2Bb%26c\r\nContent-Length: 0\r\n\r\n")
		case "/cb?token=a%2Bb%26c":
			io.WriteString(w, "HTTP/1.1 302 Found\r\nLocation: dir%2Fname/x%20y\r\nContent-Length: 0\r\n\r\n")
		default:
			fmt.Fprintf(w, "HTTP/1.1 200 OK\r\nContent-Length: %d\r\n\r\n%s", len(ex.line.Target), ex.line.Target)
		}
	})

	res, err := s.newClient(DefaultOptions()).Send(context.Background(), s.request(semantic.MethodGet, "http://example.com/start", nil))
	s.Require().NoError(err)
	s.Equal("/dir%2Fname/x%20y", s.readBody(res))

	got := s.exchanges()
	s.Require().Len(got, 3)
	s.Equal("/cb?token=a%2Bb%26c", got[1].line.Target)
	s.Equal("/dir%2Fname/x%20y", got[2].line.Target)
}

func (s *ClientTestSuite) TestSendKeepsEncoding() {
	s.listen(addr("http", "example.com", 80), respond("HTTP/1.1 204 No Content\r\n\r\n"))

	res, err := s.newClient(DefaultOptions()).Send(context.Background(), s.request(semantic.MethodGet, "http://example.com/a%2Fb?k=%3D1", nil))
	s.Require().NoError(err)
	s.Require().NoError(res.Close())

	got := s.exchanges()
	s.Require().Len(got, 1)
	s.Equal("/a%2Fb?k=%3D1", got[0].line.Target)
}

func (s *ClientTestSuite) TestRedirectBudget() {
	const k = 3

	testcases := []struct {
		desc    string
		max     uint
		wantErr error
	}{
		{desc: "budget below hops", max: k - 1, wantErr: fault.ErrTooManyRedirections},
		{desc: "budget equals hops", max: k},
		{desc: "budget above hops", max: k + 10},
		{desc: "zero budget", max: 0, wantErr: fault.ErrTooManyRedirections},
	}

	s.listen(addr("http", "example.com", 80), hops(k))

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			s.mu.Lock()
			s.received = nil
			s.mu.Unlock()

			opts := DefaultOptions()
			opts.Redirect.Max = tc.max

			res, err := s.newClient(opts).Send(context.Background(), s.request(semantic.MethodGet, "http://example.com/hop/0", nil))
			if tc.wantErr != nil {
				s.ErrorIs(err, tc.wantErr)
				s.Nil(res)
				// The hop that found the budget exhausted is not sent.
				s.Len(s.exchanges(), int(tc.max)+1)
				return
			}

			s.Require().NoError(err)
			s.Equal("done", s.readBody(res))
			s.Len(s.exchanges(), k+1)
		})
	}
}

func (s *ClientTestSuite) TestNoFollow() {
	s.listen(addr("http", "example.com", 80), respond(
		"HTTP/1.1 308 Permanent Redirect\r\nLocation: /elsewhere\r\nContent-Length: 5\r\n\r\nmoved",
	))

	opts := DefaultOptions()
	opts.Redirect.Follow = false

	res, err := s.newClient(opts).Send(context.Background(), s.request(semantic.MethodGet, "http://example.com/", nil))
	s.Require().NoError(err)

	s.Equal(status.PermanentRedirect, res.Status)
	loc, _ := res.Headers.Get("Location")
	s.Equal("/elsewhere", loc)
	s.Equal("moved", s.readBody(res))
	s.Len(s.exchanges(), 1)
}

func (s *ClientTestSuite) TestRedirectWithoutLocation() {
	s.listen(addr("http", "example.com", 80), respond(
		"HTTP/1.1 300 Multiple Choices\r\nContent-Length: 7\r\n\r\nchoices",
	))

	res, err := s.newClient(DefaultOptions()).Send(context.Background(), s.request(semantic.MethodGet, "http://example.com/", nil))
	s.Require().NoError(err)
	s.Equal(status.MultipleChoices, res.Status)
	s.Equal("choices", s.readBody(res))
}

func (s *ClientTestSuite) TestRedirectErrors() {
	testcases := []struct {
		desc     string
		location string
		wantErr  error
	}{
		{desc: "empty location", location: "", wantErr: fault.ErrLocationHeader},
		{desc: "blank location", location: "   ", wantErr: fault.ErrLocationHeader},
		{desc: "unparsable location", location: "http://[::1/x", wantErr: fault.ErrLocationHeader},
		{desc: "unsupported scheme", location: "ftp://example.com/file", wantErr: fault.ErrRedirectionURL},
		{desc: "port zero", location: "http://example.com:0/", wantErr: fault.ErrRedirectionURL},
		{desc: "missing host", location: "http:///nohost", wantErr: fault.ErrRedirectionURL},
	}

	for i, tc := range testcases {
		s.Run(tc.desc, func() {
			host := "host" + strconv.Itoa(i) + ".example"
			s.listen(addr("http", host, 80), respond(
				"HTTP/1.1 302 Found\r\nLocation: "+tc.location+"\r\nContent-Length: 0\r\n\r\n",
			))

			res, err := s.newClient(DefaultOptions()).Send(context.Background(), s.request(semantic.MethodGet, "http://"+host+"/", nil))
			s.ErrorIs(err, tc.wantErr)
			s.Nil(res)
		})
	}
}

func (s *ClientTestSuite) TestConnectNotSupported() {
	// Nothing listens; dialing would fail with an I/O error instead.
	res, err := s.newClient(DefaultOptions()).Send(context.Background(), s.request(semantic.MethodConnect, "http://example.com/", nil))
	s.ErrorIs(err, fault.ErrConnectNotSupported)
	s.Nil(res)
}

func (s *ClientTestSuite) TestSendInvalidURL() {
	testcases := []struct {
		desc    string
		url     string
		wantErr error
	}{
		{desc: "unsupported scheme", url: "ftp://example.com/", wantErr: fault.ErrInvalidBaseURL},
		{desc: "relative", url: "/just/a/path", wantErr: fault.ErrInvalidBaseURL},
		{desc: "empty host", url: "http:///path", wantErr: fault.ErrInvalidURLHost},
		{desc: "port zero", url: "http://example.com:0/", wantErr: fault.ErrInvalidURLPort},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			u, err := uri.Parse(tc.url)
			s.Require().NoError(err)

			res, err := s.newClient(DefaultOptions()).Send(context.Background(), semantic.NewRequest(semantic.MethodGet, u, nil))
			s.ErrorIs(err, tc.wantErr)
			s.Nil(res)
		})
	}
}

func (s *ClientTestSuite) TestDialFailure() {
	res, err := s.newClient(DefaultOptions()).Send(context.Background(), s.request(semantic.MethodGet, "http://unreachable.example/", nil))
	s.ErrorIs(err, fault.ErrIO)
	s.ErrorIs(err, transport.ErrNetUnreachable)
	s.Nil(res)
}

type dialerFunc func(ctx context.Context, addr transport.Addr) (transport.Conn, error)

func (f dialerFunc) Dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	return f(ctx, addr)
}

func (s *ClientTestSuite) TestHandshakeFailure() {
	d := dialerFunc(func(ctx context.Context, a transport.Addr) (transport.Conn, error) {
		return nil, &transport.HandshakeError{Addr: a, Cause: io.ErrUnexpectedEOF}
	})

	c := New(d, s.logger, s.clock, DefaultOptions())
	res, err := c.Send(context.Background(), s.request(semantic.MethodGet, "https://example.com/", nil))
	s.ErrorIs(err, fault.ErrTLS)
	s.Nil(res)
}

func (s *ClientTestSuite) TestInvalidResponses() {
	testcases := []struct {
		desc    string
		raw     string
		wantErr error
	}{
		{desc: "garbage status line", raw: "HELLO\r\n\r\n", wantErr: fault.ErrStatusLine},
		{desc: "bad status code", raw: "HTTP/1.1 2000 OK\r\n\r\n", wantErr: fault.ErrStatusCode},
		{desc: "header without colon", raw: "HTTP/1.1 200 OK\r\nBroken\r\n\r\n", wantErr: fault.ErrHeader},
		{desc: "folded header", raw: "HTTP/1.1 200 OK\r\nA: b\r\n c\r\n\r\n", wantErr: fault.ErrHeader},
		{desc: "bad content length", raw: "HTTP/1.1 200 OK\r\nContent-Length: five\r\n\r\n", wantErr: fault.ErrContentLength},
		{desc: "empty response", raw: "", wantErr: fault.ErrStatusLine},
	}

	for i, tc := range testcases {
		s.Run(tc.desc, func() {
			host := "bad" + strconv.Itoa(i) + ".example"
			s.listen(addr("http", host, 80), respond(tc.raw))

			res, err := s.newClient(DefaultOptions()).Send(context.Background(), s.request(semantic.MethodGet, "http://"+host+"/", nil))
			s.ErrorIs(err, tc.wantErr)
			s.Nil(res)
		})
	}
}

func (s *ClientTestSuite) TestInterimResponses() {
	s.listen(addr("http", "example.com", 80), respond(
		"HTTP/1.1 100 Continue\r\n\r\n"+
			"HTTP/1.1 103 Early Hints\r\nLink: </style.css>\r\n\r\n"+
			"HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nfinal",
	))

	res, err := s.newClient(DefaultOptions()).Send(context.Background(), s.request(semantic.MethodGet, "http://example.com/", nil))
	s.Require().NoError(err)
	s.Equal(status.OK, res.Status)
	s.False(res.Headers.Has("Link"))
	s.Equal("final", s.readBody(res))
}

func (s *ClientTestSuite) TestTooManyInterimResponses() {
	raw := strings.Repeat("HTTP/1.1 100 Continue\r\n\r\n", maxInterimResponses+1) +
		"HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n"
	s.listen(addr("http", "example.com", 80), respond(raw))

	res, err := s.newClient(DefaultOptions()).Send(context.Background(), s.request(semantic.MethodGet, "http://example.com/", nil))
	s.ErrorIs(err, fault.ErrStatusLine)
	s.Nil(res)
}

func (s *ClientTestSuite) TestInterimResponsesUpToLimit() {
	raw := strings.Repeat("HTTP/1.1 100 Continue\r\n\r\n", maxInterimResponses) +
		"HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok"
	s.listen(addr("http", "example.com", 80), respond(raw))

	res, err := s.newClient(DefaultOptions()).Send(context.Background(), s.request(semantic.MethodGet, "http://example.com/", nil))
	s.Require().NoError(err)
	s.Equal("ok", s.readBody(res))
}

func (s *ClientTestSuite) TestCloseDelimitedBody() {
	s.listen(addr("http", "example.com", 80), respond("HTTP/1.0 200 OK\r\n\r\nuntil the end"))

	res, err := s.newClient(DefaultOptions()).Send(context.Background(), s.request(semantic.MethodGet, "http://example.com/", nil))
	s.Require().NoError(err)
	s.Equal(http.Version{1, 0}, res.Version)
	s.Equal("until the end", s.readBody(res))
}

func (s *ClientTestSuite) TestChunkedGzipBody() {
	const text = "Wikipedia in chunks, compressed."

	var zipped bytes.Buffer
	zw := gzip.NewWriter(&zipped)
	_, err := zw.Write([]byte(text))
	s.Require().NoError(err)
	s.Require().NoError(zw.Close())

	s.listen(addr("http", "example.com", 80), func(_ exchange, w io.Writer) {
		var buf bytes.Buffer
		cw := transfer.NewChunkedWriter(&buf, []http.Field{{Name: []byte("X-Checksum"), Value: []byte("none")}})
		b := zipped.Bytes()
		for len(b) > 0 {
			n := min(7, len(b))
			cw.Write(b[:n])
			b = b[n:]
		}
		cw.Close()

		http.NewResponseEncoder(w, http.DefaultEncodeOptions).Encode(http.Response{
			StatusLine: http.StatusLine{Version: http.Version{1, 1}, StatusCode: 200, ReasonPhrase: "OK"},
			Headers: []http.Field{
				{Name: []byte("Transfer-Encoding"), Value: []byte("chunked")},
				{Name: []byte("Content-Encoding"), Value: []byte("gzip")},
			},
			Body: &buf,
		})
	})

	res, err := s.newClient(DefaultOptions()).Send(context.Background(), s.request(semantic.MethodGet, "http://example.com/", nil))
	s.Require().NoError(err)
	s.Equal(text, s.readBody(res))
}

func (s *ClientTestSuite) TestHeadWithGzip() {
	s.listen(addr("http", "example.com", 80), respond(
		"HTTP/1.1 200 OK\r\nContent-Encoding: gzip\r\nContent-Length: 120\r\n\r\n",
	))

	res, err := s.newClient(DefaultOptions()).Send(context.Background(), s.request(semantic.MethodHead, "http://example.com/", nil))
	s.Require().NoError(err)
	s.Equal("", s.readBody(res))
}

func (s *ClientTestSuite) TestTruncatedBody() {
	s.listen(addr("http", "example.com", 80), respond("HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\nshort"))

	res, err := s.newClient(DefaultOptions()).Send(context.Background(), s.request(semantic.MethodGet, "http://example.com/", nil))
	s.Require().NoError(err)
	defer res.Close()

	_, err = io.ReadAll(res.Body)
	s.ErrorIs(err, fault.ErrContentLength)
}

func (s *ClientTestSuite) TestReadTimeout() {
	s.listen(addr("http", "example.com", 80), func(_ exchange, w io.Writer) {
		io.WriteString(w, "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\n")
		// Stall until the client hangs up.
		io.Copy(io.Discard, w.(transport.Conn))
	})

	opts := DefaultOptions()
	opts.Timeout.Read = time.Second

	res, err := s.newClient(opts).Send(context.Background(), s.request(semantic.MethodGet, "http://example.com/", nil))
	s.Require().NoError(err)
	defer res.Close()

	s.clock.Add(2 * time.Second)

	_, err = res.Body.Read(make([]byte, 10))
	s.ErrorIs(err, fault.ErrIO)
	s.ErrorIs(err, transport.ErrDeadLineExceeded)
}

func (s *ClientTestSuite) TestBodyCloseIsIdempotent() {
	s.listen(addr("http", "example.com", 80), respond("HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok"))

	res, err := s.newClient(DefaultOptions()).Send(context.Background(), s.request(semantic.MethodGet, "http://example.com/", nil))
	s.Require().NoError(err)

	s.NoError(res.Close())
	s.NoError(res.Close())
}
