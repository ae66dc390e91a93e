package client

import (
	"time"

	"http-client/application/http"
)

type Options struct {
	Redirect RedirectOptions
	Send     SendOptions
	Receive  ReceiveOptions
	Timeout  TimeoutOptions
}

type RedirectOptions struct {
	// Follow makes [Client.Send] follow 3xx responses carrying a Location.
	// When false every response is returned as received.
	Follow bool

	// Max is the redirect budget of a single Send.
	// Zero with Follow set fails on the first redirect.
	Max uint
}

type SendOptions struct {
	Encode http.EncodeOptions
}

type ReceiveOptions struct {
	Decode http.DecodeOptions
}

// Zero durations mean no limit.
type TimeoutOptions struct {
	// Connect bounds each dial, TLS handshake included.
	Connect time.Duration
	// Write bounds sending a request.
	Write time.Duration
	// Read bounds receiving a response, body included.
	Read time.Duration
}

const DefaultMaxRedirections = 5

func DefaultOptions() Options {
	return Options{
		Redirect: RedirectOptions{
			Follow: true,
			Max:    DefaultMaxRedirections,
		},
		Send:    SendOptions{Encode: http.DefaultEncodeOptions},
		Receive: ReceiveOptions{Decode: http.DefaultDecodeOptions},
	}
}
