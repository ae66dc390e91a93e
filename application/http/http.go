package http

import (
	"bytes"
	"io"
	"strconv"

	"http-client/application/util/rule"

	"github.com/pkg/errors"
)

type RequestLine struct {
	Method  string
	Target  string
	Version Version
}

type Request struct {
	RequestLine
	Headers []Field

	Body io.Reader
}

type StatusLine struct {
	Version      Version
	StatusCode   uint
	ReasonPhrase string
}

type Response struct {
	StatusLine
	Headers []Field

	// Body is positioned right after the header block.
	// It is not framed; see package transfer.
	Body io.Reader
}

// [Major, Minor]
type Version [2]uint

// ParseVersion parses http version text(e.g. "HTTP/1.1") into [Version].
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.3
func ParseVersion(b []byte) (Version, error) {
	prefix := []byte("HTTP/")
	if !bytes.HasPrefix(b, prefix) {
		return Version{}, errors.Errorf("http version prefix not found: %q", b)
	}

	// Get major and minor version.
	first, second, found := bytes.Cut(b[len(prefix):], []byte{'.'})
	if !found {
		return Version{}, errors.Errorf("dot seperator not found on version: %q", b)
	}

	// HTTP-version = HTTP-name "/" DIGIT "." DIGIT
	if len(first) != 1 || len(second) != 1 ||
		!rule.IsDigit(rune(first[0])) || !rule.IsDigit(rune(second[0])) {
		return Version{}, errors.Errorf("http version is not DIGIT.DIGIT: %q", b)
	}

	return Version{uint(first[0] - '0'), uint(second[0] - '0')}, nil
}

func (ver Version) Text() []byte {
	buf := bytes.NewBuffer(nil)
	buf.Write([]byte("HTTP/"))
	buf.Write([]byte(strconv.FormatUint(uint64(ver[0]), 10)))
	buf.Write([]byte{'.'})
	buf.Write([]byte(strconv.FormatUint(uint64(ver[1]), 10)))
	return buf.Bytes()
}

func (ver Version) String() string { return string(ver.Text()) }

type Field struct{ Name, Value []byte }

var (
	ErrObsoleteLineFolding = errors.New("obsolete line folding is not supported")
	ErrMissingColon        = errors.New("colon seperator not found on field line")
	ErrEmptyFieldName      = errors.New("field name is empty")
	ErrInvalidFieldName    = errors.New("field name is not a valid token")
)

// ParseField parses a single field line.
// Surrounding whitespace of the name and the value is trimmed.
//
// A line starting with whitespace is an obs-fold continuation.
// It is rejected instead of being joined to the previous line.
func ParseField(fieldLine []byte) (Field, error) {
	if len(fieldLine) > 0 && rule.IsOWS(fieldLine[0]) {
		return Field{}, ErrObsoleteLineFolding
	}

	name, value, found := bytes.Cut(fieldLine, []byte{':'})
	if !found {
		return Field{}, errors.Wrapf(ErrMissingColon, "%q", fieldLine)
	}

	name = bytes.TrimFunc(name, rule.IsWhitespace)
	if len(name) == 0 {
		return Field{}, ErrEmptyFieldName
	}

	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.1-3
	value = bytes.TrimFunc(value, rule.IsWhitespace)

	return Field{Name: name, Value: value}, nil
}

func (f *Field) Text() []byte {
	buf := bytes.NewBuffer(nil)
	buf.Write(f.Name)
	buf.Write([]byte(": "))
	buf.Write(f.Value)
	return buf.Bytes()
}
