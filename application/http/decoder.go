package http

import (
	"bufio"
	"bytes"
	"io"

	"http-client/application/http/fault"
	"http-client/application/util/rule"
	bytesutil "http-client/util/bytes"

	"github.com/pkg/errors"
)

type DecodeOptions struct {
	// AllowSoleLF specifies wheter a single LF character should be recognized as a valid line terminator.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-3
	AllowSoleLF bool

	// StrictFieldNames rejects field names which are not tokens.
	// When false, any non-empty name before the colon is accepted.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.1
	StrictFieldNames bool

	// MaxStatusLineLength sets the limit of status line length.
	// Zero means no limit.
	MaxStatusLineLength uint

	// MaxFieldLineLength sets the limit of field line length on headers and trailers.
	// Zero means no limit.
	MaxFieldLineLength uint

	// MaxFields sets the limit of field lines in a single header or trailer block.
	// Zero means no limit.
	MaxFields uint
}

var DefaultDecodeOptions = DecodeOptions{
	AllowSoleLF:         false,
	StrictFieldNames:    false,
	MaxStatusLineLength: 8 << 10,
	MaxFieldLineLength:  64 << 10,
	MaxFields:           256,
}

// MessageDecoder reads lines and field blocks off a buffered stream.
// It never reads past the line terminator of the last line it returns,
// so the stream is left at the first byte after it.
type MessageDecoder struct {
	br   *bufio.Reader
	opts DecodeOptions
}

var (
	ErrLineTooLong       = errors.New("line length exceeeds limit")
	ErrMissingCRBeforeLF = errors.New("missing CR before LF")
	ErrTooManyFields     = errors.New("number of fields exceeds limit")
)

func NewMessageDecoder(br *bufio.Reader, opts DecodeOptions) *MessageDecoder {
	return &MessageDecoder{br: br, opts: opts}
}

func (md *MessageDecoder) Options() DecodeOptions { return md.opts }

// Reader returns the underlying stream, positioned after the last line read.
func (md *MessageDecoder) Reader() *bufio.Reader { return md.br }

// ReadLine reads a line and strips its terminator.
func (md *MessageDecoder) ReadLine(limit uint) ([]byte, error) {
	b, err := bytesutil.ReadUntil(md.br, []byte{rule.LF}, limit)
	if err != nil {
		if errors.Is(err, bytesutil.ErrTooLong) {
			return nil, ErrLineTooLong
		}
		return nil, err
	}

	b = b[:len(b)-1] // Remove LF.

	if len(b) > 0 && b[len(b)-1] == rule.CR {
		b = b[:len(b)-1] // Remove CR.
	} else if !md.opts.AllowSoleLF {
		return nil, ErrMissingCRBeforeLF
	}

	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-4
	b = bytes.ReplaceAll(b, []byte{rule.CR}, []byte{rule.SP})

	return b, nil
}

// ReadFields reads field lines until an empty line.
// The empty line is consumed.
func (md *MessageDecoder) ReadFields() ([]Field, error) {
	fields := make([]Field, 0)
	for {
		fieldLine, err := md.ReadLine(md.opts.MaxFieldLineLength)
		if err != nil {
			return nil, errors.Wrap(err, "reading line")
		}

		if len(fieldLine) == 0 {
			// An empty line. This means that there are no more fields.
			return fields, nil
		}

		if md.opts.MaxFields > 0 && uint(len(fields)) >= md.opts.MaxFields {
			return nil, ErrTooManyFields
		}

		field, err := ParseField(fieldLine)
		if err != nil {
			return nil, err
		}

		if md.opts.StrictFieldNames && !rule.IsValidToken(string(field.Name)) {
			return nil, errors.Wrapf(ErrInvalidFieldName, "%q", field.Name)
		}

		fields = append(fields, field)
	}
}

// IsMalformed reports whether err was produced by the line or field grammar
// rather than by the underlying stream. An early end of stream counts as
// malformed, since the message was cut before its terminator.
func IsMalformed(err error) bool {
	for _, target := range []error{
		ErrLineTooLong, ErrMissingCRBeforeLF, ErrTooManyFields,
		ErrObsoleteLineFolding, ErrMissingColon, ErrEmptyFieldName, ErrInvalidFieldName,
		io.EOF, io.ErrUnexpectedEOF,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Classify turns err into an invalid response of kind when it comes from the
// message grammar, or into an I/O failure otherwise.
func Classify(kind fault.ResponseKind, err error) error {
	if IsMalformed(err) {
		return fault.InvalidResponse(kind, err)
	}
	return fault.IO(err)
}

type ResponseDecoder struct{ *MessageDecoder }

// NewResponseDecoder reuses r if it is already a [*bufio.Reader].
func NewResponseDecoder(r io.Reader, opts DecodeOptions) *ResponseDecoder {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &ResponseDecoder{NewMessageDecoder(br, opts)}
}

// Decode reads the status line and header block into r.
// r.Body is set to the stream positioned at the first body byte.
//
// r MUST be a non-nil pointer
func (rd *ResponseDecoder) Decode(r *Response) error {
	if err := rd.decodeStatusLine(&r.StatusLine); err != nil {
		return errors.Wrap(err, "parsing status line")
	}

	headers, err := rd.ReadFields()
	if err != nil {
		return errors.Wrap(Classify(fault.ResponseHeader, err), "parsing headers")
	}
	r.Headers = headers

	r.Body = rd.br

	return nil
}

func (rd *ResponseDecoder) decodeStatusLine(statLine *StatusLine) error {
	line, err := rd.ReadLine(rd.opts.MaxStatusLineLength)
	if err != nil {
		return Classify(fault.ResponseStatusLine, err)
	}

	parsed, err := ParseStatusLine(line)
	if err != nil {
		return err
	}

	*statLine = parsed

	return nil
}

// ParseStatusLine parses "HTTP-version SP status-code SP [reason-phrase]".
// A missing reason phrase (and its preceding SP) is tolerated.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-4
func ParseStatusLine(line []byte) (StatusLine, error) {
	parts := bytes.SplitN(line, []byte{rule.SP}, 3)
	if len(parts) < 2 {
		return StatusLine{}, fault.InvalidResponse(
			fault.ResponseStatusLine,
			errors.Errorf("status line is malformed: %q", line),
		)
	}

	ver, err := ParseVersion(parts[0])
	if err != nil {
		return StatusLine{}, fault.InvalidResponse(
			fault.ResponseStatusLine,
			errors.Wrap(err, "parsing version"),
		)
	}

	statusCode, err := parseStatusCode(parts[1])
	if err != nil {
		return StatusLine{}, fault.InvalidResponse(fault.ResponseStatusCode, err)
	}

	// reason-phrase is optional.
	reasonPhrase := ""
	if len(parts) == 3 {
		reasonPhrase = string(parts[2])
	}

	return StatusLine{Version: ver, StatusCode: statusCode, ReasonPhrase: reasonPhrase}, nil
}

func parseStatusCode(b []byte) (uint, error) {
	if len(b) != 3 {
		return 0, errors.Errorf("status code is not 3 digits: %q", b)
	}

	code := uint(0)
	for _, c := range b {
		if !rule.IsDigit(rune(c)) {
			return 0, errors.Errorf("status code is malformed: %q", b)
		}
		code = code*10 + uint(c-'0')
	}

	if code < 100 || code > 599 {
		return 0, errors.Errorf("status code out of range: %d", code)
	}

	return code, nil
}

// RequestDecoder reads requests. The client never receives one;
// the in-memory peer in tests decodes what the client sent with it.
type RequestDecoder struct{ *MessageDecoder }

func NewRequestDecoder(r io.Reader, opts DecodeOptions) *RequestDecoder {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &RequestDecoder{NewMessageDecoder(br, opts)}
}

// Decode reads the request line and header block into r.
// r.Body is set to the stream positioned at the first body byte.
func (rd *RequestDecoder) Decode(r *Request) error {
	line, err := rd.ReadLine(rd.opts.MaxStatusLineLength)
	if err != nil {
		return errors.Wrap(err, "reading request line")
	}

	reqLine, err := ParseRequestLine(line)
	if err != nil {
		return errors.Wrap(err, "parsing request line")
	}
	r.RequestLine = reqLine

	headers, err := rd.ReadFields()
	if err != nil {
		return errors.Wrap(err, "parsing headers")
	}
	r.Headers = headers

	r.Body = rd.br

	return nil
}

// ParseRequestLine parses "method SP request-target SP HTTP-version".
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3
func ParseRequestLine(line []byte) (RequestLine, error) {
	parts := bytes.Split(line, []byte{rule.SP})
	if len(parts) != 3 {
		return RequestLine{}, errors.Errorf("request line is malformed: %q", line)
	}

	if !rule.IsValidToken(string(parts[0])) {
		return RequestLine{}, errors.Errorf("method is not a token: %q", parts[0])
	}
	if len(parts[1]) == 0 {
		return RequestLine{}, errors.New("request target is empty")
	}

	ver, err := ParseVersion(parts[2])
	if err != nil {
		return RequestLine{}, errors.Wrap(err, "parsing version")
	}

	return RequestLine{Method: string(parts[0]), Target: string(parts[1]), Version: ver}, nil
}
