package semantic

import (
	"io"

	"http-client/application/http"
	"http-client/application/http/semantic/status"
	"http-client/application/util/uri"
)

type Response struct {
	Version http.Version
	Status  status.Status
	Headers Headers

	// Body yields the decoded content. It must be closed by the receiver.
	Body io.ReadCloser

	// URI is the target that produced this response, after any redirect.
	URI uri.URI
}

// ResponseFrom copies the start line and headers of raw.
// The reason phrase sent by the server is kept even if it differs from the registered one.
func ResponseFrom(raw *http.Response) *Response {
	st, _ := status.FromCode(raw.StatusCode)
	if raw.ReasonPhrase != "" {
		st.ReasonPhrase = raw.ReasonPhrase
	}

	return &Response{
		Version: raw.Version,
		Status:  st,
		Headers: HeadersFrom(raw.Headers),
	}
}

// Close closes the body, if any.
func (r *Response) Close() error {
	if r.Body == nil {
		return nil
	}
	return r.Body.Close()
}
