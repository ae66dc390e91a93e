// Package fault defines the failure kinds reported while decoding responses
// and following redirects.
//
// Every failure surfaced by the decoder, the body readers and the client
// carries exactly one [*Error] in its chain. Callers branch on it with
// [KindOf], [ResponseKindOf] or errors.Is against the sentinels below.
package fault

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind uint

const (
	// KindIO wraps a transport or decompression failure.
	KindIO Kind = 1 + iota
	// KindTLS wraps a TLS handshake failure.
	KindTLS
	KindConnectNotSupported
	KindInvalidBaseURL
	KindInvalidURLHost
	KindInvalidURLPort
	KindTooManyRedirections
	// KindInvalidResponse means the server sent something unparsable.
	// [Error.Response] tells which part of it.
	KindInvalidResponse
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io error"
	case KindTLS:
		return "tls error"
	case KindConnectNotSupported:
		return "CONNECT is not supported"
	case KindInvalidBaseURL:
		return "invalid base URL"
	case KindInvalidURLHost:
		return "URL is missing a valid host"
	case KindInvalidURLPort:
		return "URL is missing a valid port"
	case KindTooManyRedirections:
		return "too many redirections"
	case KindInvalidResponse:
		return "invalid response"
	}
	return fmt.Sprintf("unknown kind(%d)", uint(k))
}

type ResponseKind uint

const (
	ResponseLocationHeader ResponseKind = 1 + iota
	ResponseRedirectionURL
	ResponseStatusLine
	ResponseStatusCode
	ResponseHeader
	ResponseChunkSize
	ResponseChunk
	ResponseContentLength
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseLocationHeader:
		return "missing or invalid location header"
	case ResponseRedirectionURL:
		return "invalid redirection url"
	case ResponseStatusLine:
		return "invalid status line"
	case ResponseStatusCode:
		return "invalid status code"
	case ResponseHeader:
		return "invalid header"
	case ResponseChunkSize:
		return "invalid chunk size"
	case ResponseChunk:
		return "invalid chunk"
	case ResponseContentLength:
		return "invalid content length"
	}
	return fmt.Sprintf("unknown response kind(%d)", uint(k))
}

type Error struct {
	Kind Kind
	// Response is only set when Kind is [KindInvalidResponse].
	Response ResponseKind

	cause error
}

var _ error = (*Error)(nil)

func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

func InvalidResponse(kind ResponseKind, cause error) *Error {
	return &Error{Kind: KindInvalidResponse, Response: kind, cause: cause}
}

// IO wraps err as [KindIO] unless err already carries an [*Error].
func IO(err error) error {
	return wrapLower(KindIO, err)
}

// TLS wraps err as [KindTLS] unless err already carries an [*Error].
func TLS(err error) error {
	return wrapLower(KindTLS, err)
}

func wrapLower(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return New(kind, err)
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Kind == KindInvalidResponse && e.Response != 0 {
		msg += ": " + e.Response.String()
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Cause() error { return e.cause }

// Is reports whether target is an [*Error] of the same kind.
// A target with zero Response matches every invalid response.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind != e.Kind {
		return false
	}
	return t.Response == 0 || t.Response == e.Response
}

var (
	ErrIO                  = &Error{Kind: KindIO}
	ErrTLS                 = &Error{Kind: KindTLS}
	ErrConnectNotSupported = &Error{Kind: KindConnectNotSupported}
	ErrInvalidBaseURL      = &Error{Kind: KindInvalidBaseURL}
	ErrInvalidURLHost      = &Error{Kind: KindInvalidURLHost}
	ErrInvalidURLPort      = &Error{Kind: KindInvalidURLPort}
	ErrTooManyRedirections = &Error{Kind: KindTooManyRedirections}
	ErrInvalidResponse     = &Error{Kind: KindInvalidResponse}

	ErrLocationHeader = &Error{Kind: KindInvalidResponse, Response: ResponseLocationHeader}
	ErrRedirectionURL = &Error{Kind: KindInvalidResponse, Response: ResponseRedirectionURL}
	ErrStatusLine     = &Error{Kind: KindInvalidResponse, Response: ResponseStatusLine}
	ErrStatusCode     = &Error{Kind: KindInvalidResponse, Response: ResponseStatusCode}
	ErrHeader         = &Error{Kind: KindInvalidResponse, Response: ResponseHeader}
	ErrChunkSize      = &Error{Kind: KindInvalidResponse, Response: ResponseChunkSize}
	ErrChunk          = &Error{Kind: KindInvalidResponse, Response: ResponseChunk}
	ErrContentLength  = &Error{Kind: KindInvalidResponse, Response: ResponseContentLength}
)

// KindOf returns the kind of the first [*Error] in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Kind, true
}

// ResponseKindOf returns the response kind if err is an invalid response.
func ResponseKindOf(err error) (ResponseKind, bool) {
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindInvalidResponse {
		return 0, false
	}
	return e.Response, true
}
