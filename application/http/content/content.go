// Package content decodes the content codings of a response body.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-8.4.1
package content

import (
	"bufio"
	"io"

	"http-client/application/http/fault"
	"http-client/application/http/semantic"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

type Coding string

const (
	CodingIdentity Coding = "identity"
	CodingGzip     Coding = "gzip"
	CodingDeflate  Coding = "deflate"

	// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-8.4.1.3-2
	codingXGzip Coding = "x-gzip"
)

// AcceptEncoding is sent on every request.
const AcceptEncoding = "gzip, deflate"

// Select picks the decoder for a response to a request with method.
// Both Content-Encoding and Transfer-Encoding are looked at, and gzip wins over deflate.
// Responses to HEAD are never decoded since they carry no content.
func Select(method semantic.Method, headers semantic.Headers) Coding {
	if method == semantic.MethodHead {
		return CodingIdentity
	}

	has := func(c Coding) bool {
		return headers.ContainsToken("Content-Encoding", string(c)) ||
			headers.ContainsToken("Transfer-Encoding", string(c))
	}

	switch {
	case has(CodingGzip), has(codingXGzip):
		return CodingGzip
	case has(CodingDeflate):
		return CodingDeflate
	}
	return CodingIdentity
}

// NewReader returns body decoded with coding.
//
// The decompressor is created on the first Read, so no byte of body is
// consumed before the caller asks for content.
// Closing the returned reader releases the decompressor, not body.
func NewReader(body io.Reader, coding Coding) io.ReadCloser {
	if coding == CodingIdentity || coding == "" {
		return io.NopCloser(body)
	}
	return &decodingReader{src: body, coding: coding}
}

type decodingReader struct {
	src    io.Reader
	coding Coding

	dec io.ReadCloser
	err error
}

func (dr *decodingReader) Read(p []byte) (int, error) {
	if dr.err != nil {
		return 0, dr.err
	}

	if dr.dec == nil {
		dec, err := newDecoder(dr.src, dr.coding)
		if err != nil {
			dr.err = fault.IO(errors.Wrapf(err, "initializing %s decoder", dr.coding))
			return 0, dr.err
		}
		dr.dec = dec
	}

	n, err := dr.dec.Read(p)
	if err != nil && err != io.EOF {
		dr.err = fault.IO(errors.Wrapf(err, "decoding %s", dr.coding))
		return n, dr.err
	}
	return n, err
}

func (dr *decodingReader) Close() error {
	if dr.dec == nil {
		return nil
	}
	return dr.dec.Close()
}

func newDecoder(r io.Reader, coding Coding) (io.ReadCloser, error) {
	switch coding {
	case CodingGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		return zr, nil
	case CodingDeflate:
		// Servers disagree on whether "deflate" is zlib-wrapped.
		// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-8.4.1.2
		br := bufio.NewReader(r)
		head, err := br.Peek(2)
		if err == nil && isZlibHeader(head) {
			return zlib.NewReader(br)
		}
		if err != nil && len(head) == 0 {
			return nil, unexpectedEOF(err)
		}
		return flate.NewReader(br), nil
	}
	return nil, errors.Errorf("unknown coding %q", coding)
}

// isZlibHeader checks CMF and FLG.
// Reference: https://datatracker.ietf.org/doc/html/rfc1950#section-2.2
func isZlibHeader(b []byte) bool {
	cmf, flg := b[0], b[1]
	return cmf&0x0f == 8 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
