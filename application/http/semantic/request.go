package semantic

import (
	"bytes"
	"strconv"

	"http-client/application/http"
	"http-client/application/util/uri"
)

// Request describes a request to send.
// Body is held in memory so the request can be sent again on a redirect.
type Request struct {
	Method  Method
	URI     uri.URI
	Version http.Version
	Headers Headers
	Body    []byte
}

func NewRequest(method Method, target uri.URI, body []byte) *Request {
	return &Request{
		Method:  method,
		URI:     target.Clone(),
		Version: http.Version{1, 1},
		Headers: NewHeaders(),
		Body:    body,
	}
}

func (r *Request) Clone() *Request {
	var body []byte
	if r.Body != nil {
		body = bytes.Clone(r.Body)
	}
	return &Request{
		Method:  r.Method,
		URI:     r.URI.Clone(),
		Version: r.Version,
		Headers: r.Headers.Clone(),
		Body:    body,
	}
}

// Redirected returns a copy of r aimed at target.
// Method, headers and body are kept.
func (r *Request) Redirected(target uri.URI) *Request {
	next := r.Clone()
	next.URI = target.Clone()
	return next
}

// Authority returns "host[:port]" as it should appear in the Host header.
// The port is omitted when it is the default of the scheme.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-7.2
func (r *Request) Authority() string {
	host := r.URI.Host()
	port, ok := r.URI.Port()
	if !ok {
		return host
	}
	if def, ok := DefaultPort(r.URI.Scheme); ok && def == port {
		return host
	}
	// IP literals keep their brackets in [uri.Authority.Host].
	return host + ":" + strconv.FormatUint(uint64(port), 10)
}

// RawRequest builds the wire request in origin-form.
// Host is regenerated from the URI, and Content-Length from the body.
func (r *Request) RawRequest() http.Request {
	headers := r.Headers.Clone()
	headers.Del("Host")
	headers.Del("Content-Length")

	fields := make([]http.Field, 0, headers.Len()+2)
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3.2-5
	fields = append(fields, http.Field{Name: []byte("Host"), Value: []byte(r.Authority())})
	fields = append(fields, headers.ToRawFields()...)

	if len(r.Body) > 0 || expectsContent(r.Method) {
		// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-8.6-5
		fields = append(fields, http.Field{
			Name:  []byte("Content-Length"),
			Value: []byte(strconv.Itoa(len(r.Body))),
		})
	}

	return http.Request{
		RequestLine: http.RequestLine{
			Method:  string(r.Method),
			Target:  r.URI.RequestTarget(),
			Version: r.Version,
		},
		Headers: fields,
		Body:    bytes.NewReader(r.Body),
	}
}

func expectsContent(m Method) bool {
	return m == MethodPost || m == MethodPut || m == MethodPatch
}
