package transfer

import (
	"strconv"
	"strings"

	"http-client/application/http/fault"
	"http-client/application/http/semantic"
	"http-client/application/http/semantic/status"
	"http-client/application/util/rule"

	"github.com/pkg/errors"
)

type Coding string

const (
	CodingChunked Coding = "chunked"
)

// Mode is how the end of a response body is found.
type Mode uint8

const (
	// ModeContentLength reads exactly [Framing.Length] bytes.
	ModeContentLength Mode = iota
	// ModeChunked reads chunks until the last chunk and the trailer section.
	ModeChunked
	// ModeCloseDelimited reads until the connection is closed.
	ModeCloseDelimited
)

func (m Mode) String() string {
	switch m {
	case ModeContentLength:
		return "content-length"
	case ModeChunked:
		return "chunked"
	case ModeCloseDelimited:
		return "close-delimited"
	}
	return "unknown"
}

type Framing struct {
	Mode Mode
	// Length is only meaningful for [ModeContentLength].
	Length uint64
}

func ContentLength(n uint64) Framing { return Framing{Mode: ModeContentLength, Length: n} }

var (
	Chunked        = Framing{Mode: ModeChunked}
	CloseDelimited = Framing{Mode: ModeCloseDelimited}
)

func (f Framing) String() string {
	if f.Mode == ModeContentLength {
		return f.Mode.String() + "(" + strconv.FormatUint(f.Length, 10) + ")"
	}
	return f.Mode.String()
}

// FramingFor decides the framing of a response to a request with method.
//
// Precedence:
//   - responses to HEAD, 1xx, 204 and 304 have no content.
//   - chunked in Transfer-Encoding wins over Content-Length.
//   - a valid Content-Length.
//   - otherwise the body is delimited by connection close.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3
func FramingFor(method semantic.Method, st status.Status, headers semantic.Headers) (Framing, error) {
	if method == semantic.MethodHead || st.HasNoContent() {
		return ContentLength(0), nil
	}

	if headers.ContainsToken("Transfer-Encoding", string(CodingChunked)) {
		return Chunked, nil
	}

	n, ok, err := parseContentLength(headers)
	if err != nil {
		return Framing{}, fault.InvalidResponse(fault.ResponseContentLength, err)
	}
	if ok {
		return ContentLength(n), nil
	}

	return CloseDelimited, nil
}

// parseContentLength accepts repeated lines and comma-separated lists
// as long as every element is the same decimal number.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-8.6
func parseContentLength(headers semantic.Headers) (uint64, bool, error) {
	values, ok := headers.Values("Content-Length")
	if !ok {
		return 0, false, nil
	}

	var first string
	for _, value := range values {
		for _, elem := range strings.Split(value, ",") {
			elem = strings.TrimFunc(elem, rule.IsWhitespace)
			if elem == "" {
				return 0, false, errors.Errorf("empty element in Content-Length: %q", value)
			}
			for i := 0; i < len(elem); i++ {
				if !rule.IsDigit(rune(elem[i])) {
					return 0, false, errors.Errorf("Content-Length is not a number: %q", elem)
				}
			}

			if first == "" {
				first = elem
			} else if elem != first {
				return 0, false, errors.Errorf("conflicting Content-Length: %q, %q", first, elem)
			}
		}
	}

	n, err := strconv.ParseInt(first, 10, 64)
	if err != nil {
		return 0, false, errors.Wrap(err, "Content-Length out of range")
	}

	return uint64(n), true, nil
}
