package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"http-client/application/http/actor/client"
	"http-client/application/http/fault"
	"http-client/application/http/semantic"
	"http-client/transport/tcp"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

const fetchUsage = `
Usage:	fetch [options] <url>

   Sends a single request and writes the decoded response body to stdout.
   Redirects are followed unless -no-follow is given.

Example:

   $ fetch -i -H 'Accept: text/plain' https://example.com/
   HTTP/1.1 200 OK
   Content-Type: text/plain
   ...

Options:
   -X method            Request method (default GET)
   -d data              Request body
   -H 'name: value'     Extra request header, may be repeated
   -i                   Print the status line and headers
   -config path         YAML client configuration
   -max-redirects n     Redirect budget (overrides the configuration)
   -no-follow           Return 3xx responses as they are
   -insecure            Skip TLS certificate verification
   -v                   Log debug records to stderr
`

type stringList []string

func (s stringList) String() string {
	return fmt.Sprintf("%v", []string(s))
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func fetch(ctx context.Context, stdout, stderr io.Writer, args ...string) int {
	var (
		method       string
		data         string
		headers      stringList
		include      bool
		configPath   string
		maxRedirects int
		noFollow     bool
		insecure     bool
		verbose      bool
	)

	flagSet := flag.NewFlagSet("fetch", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.Usage = func() { fmt.Fprint(stderr, fetchUsage+"\n") }
	flagSet.StringVar(&method, "X", "GET", "")
	flagSet.StringVar(&data, "d", "", "")
	flagSet.Var(&headers, "H", "")
	flagSet.BoolVar(&include, "i", false, "")
	flagSet.StringVar(&configPath, "config", "", "")
	flagSet.IntVar(&maxRedirects, "max-redirects", -1, "")
	flagSet.BoolVar(&noFollow, "no-follow", false, "")
	flagSet.BoolVar(&insecure, "insecure", false, "")
	flagSet.BoolVar(&verbose, "v", false, "")

	if err := flagSet.Parse(args); err != nil {
		return 2
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return 2
	}

	opts := client.DefaultOptions()
	if configPath != "" {
		c, err := client.LoadConfig(configPath)
		if err != nil {
			fmt.Fprintf(stderr, "fetch: %v\n", err)
			return 1
		}
		opts = c.Options()
	}
	if maxRedirects >= 0 {
		opts.Redirect.Max = uint(maxRedirects)
	}
	if noFollow {
		opts.Redirect.Follow = false
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	req, err := buildRequest(method, flagSet.Arg(0), data, headers)
	if err != nil {
		return report(stderr, err)
	}

	dialer := tcp.NewDialer(tcp.Options{InsecureSkipVerify: insecure})
	c := client.New(dialer, logger, clock.New(), opts)

	res, err := c.Send(ctx, req)
	if err != nil {
		return report(stderr, err)
	}
	defer res.Close()

	if include {
		fmt.Fprintf(stdout, "%s %s\r\n", res.Version.Text(), res.Status)
		for _, f := range res.Headers.Fields() {
			fmt.Fprintf(stdout, "%s: %s\r\n", f.Name, f.Value)
		}
		fmt.Fprint(stdout, "\r\n")
	}

	if _, err := io.Copy(stdout, res.Body); err != nil {
		return report(stderr, err)
	}
	return 0
}

func buildRequest(method, rawURL, data string, headers []string) (*semantic.Request, error) {
	u, err := client.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	var body []byte
	if data != "" {
		body = []byte(data)
	}

	req := semantic.NewRequest(semantic.ParseMethod(method), u, body)
	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, errors.Errorf("header must be 'name: value': %q", h)
		}
		req.Headers.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return req, nil
}

// report prints err and maps it to the exit status.
// Failures the client reports through [fault.Error] exit with 1, anything else with 2.
func report(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "fetch: %v\n", err)
	if _, ok := fault.KindOf(err); ok {
		return 1
	}
	return 2
}
