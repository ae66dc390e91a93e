package transfer

import (
	"bytes"
	"io"
	"strconv"

	"http-client/application/http"
	"http-client/application/http/fault"
	"http-client/application/util/rule"

	"github.com/pkg/errors"
)

// maxChunkSizeDigits bounds chunk-size to 64 bits.
const maxChunkSizeDigits = 16

type chunkState uint8

const (
	stateSize chunkState = iota
	stateData
	stateDataEnd
	stateTrailer
	stateDone
)

// ChunkedReader decodes a chunked body.
//
// Chunk extensions are ignored. Trailer fields are consumed and discarded.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-7.1
type ChunkedReader struct {
	md     *http.MessageDecoder
	state  chunkState
	remain uint64 // of the current chunk
	err    error
}

var _ io.Reader = (*ChunkedReader)(nil)

func NewChunkedReader(md *http.MessageDecoder) *ChunkedReader {
	return &ChunkedReader{md: md}
}

func (cr *ChunkedReader) Read(p []byte) (int, error) {
	if cr.err != nil {
		return 0, cr.err
	}
	if len(p) == 0 {
		return 0, nil
	}

	n, err := cr.read(p)
	if err != nil && err != io.EOF {
		cr.err = err
		if n > 0 {
			return n, nil
		}
	}
	return n, err
}

func (cr *ChunkedReader) read(p []byte) (int, error) {
	for {
		switch cr.state {
		case stateSize:
			if err := cr.readSize(); err != nil {
				return 0, err
			}

		case stateData:
			if uint64(len(p)) > cr.remain {
				p = p[:cr.remain]
			}

			n, err := cr.md.Reader().Read(p)
			cr.remain -= uint64(n)
			if cr.remain == 0 {
				cr.state = stateDataEnd
			}

			if err == io.EOF && cr.state == stateData {
				err = fault.InvalidResponse(
					fault.ResponseChunk,
					errors.Wrapf(io.ErrUnexpectedEOF, "%d bytes missing in chunk", cr.remain),
				)
			} else if err == io.EOF {
				err = nil
			}
			if err != nil {
				return n, fault.IO(err)
			}
			if n > 0 {
				return n, nil
			}

		case stateDataEnd:
			if err := cr.readDataEnd(); err != nil {
				return 0, err
			}

		case stateTrailer:
			if _, err := cr.md.ReadFields(); err != nil {
				return 0, http.Classify(fault.ResponseChunk, errors.Wrap(err, "reading trailer"))
			}
			cr.state = stateDone

		case stateDone:
			return 0, io.EOF
		}
	}
}

func (cr *ChunkedReader) readSize() error {
	line, err := cr.md.ReadLine(cr.md.Options().MaxFieldLineLength)
	if err != nil {
		return http.Classify(fault.ResponseChunkSize, errors.Wrap(err, "reading chunk size"))
	}

	size, err := parseChunkSize(line)
	if err != nil {
		return fault.InvalidResponse(fault.ResponseChunkSize, err)
	}

	if size == 0 {
		// Last chunk.
		cr.state = stateTrailer
		return nil
	}

	cr.remain = size
	cr.state = stateData
	return nil
}

// readDataEnd consumes the CRLF after chunk data.
func (cr *ChunkedReader) readDataEnd() error {
	line, err := cr.md.ReadLine(uint(len(rule.CRLF)))
	if err != nil {
		return http.Classify(fault.ResponseChunk, errors.Wrap(err, "reading chunk delimiter"))
	}
	if len(line) != 0 {
		return fault.InvalidResponse(fault.ResponseChunk, errors.Errorf("CRLF delimiter not found: %q", line))
	}

	cr.state = stateSize
	return nil
}

// parseChunkSize parses "chunk-size [ BWS chunk-ext ]".
func parseChunkSize(line []byte) (uint64, error) {
	sizeRaw, _, _ := bytes.Cut(line, []byte{';'})
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-7.1.1-3
	sizeRaw = bytes.TrimRightFunc(sizeRaw, rule.IsWhitespace)

	if len(sizeRaw) == 0 {
		return 0, errors.Errorf("chunk size is empty: %q", line)
	}
	if len(sizeRaw) > maxChunkSizeDigits {
		return 0, errors.Errorf("chunk size larger than 64bit: %q", sizeRaw)
	}
	for _, c := range sizeRaw {
		if !rule.IsHex(rune(c)) {
			return 0, errors.Errorf("chunk size is not hex: %q", sizeRaw)
		}
	}

	return strconv.ParseUint(string(sizeRaw), 16, 64)
}

// ChunkedWriter encodes written bytes as chunks.
// Close writes the last chunk and the trailer section.
type ChunkedWriter struct {
	w        io.Writer
	trailers []http.Field
}

var _ io.WriteCloser = (*ChunkedWriter)(nil)

func NewChunkedWriter(w io.Writer, trailers []http.Field) *ChunkedWriter {
	return &ChunkedWriter{w: w, trailers: trailers}
}

func (cw *ChunkedWriter) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		// A zero length chunk would end the body.
		return 0, nil
	}

	buf := bytes.NewBuffer(make([]byte, 0, len(p)+maxChunkSizeDigits+2*len(rule.CRLF)))
	buf.WriteString(strconv.FormatUint(uint64(len(p)), 16))
	buf.Write(rule.CRLF)
	buf.Write(p)
	buf.Write(rule.CRLF)

	if _, err := cw.w.Write(buf.Bytes()); err != nil {
		return 0, errors.Wrap(err, "writing chunk")
	}

	return len(p), nil
}

func (cw *ChunkedWriter) Close() error {
	buf := bytes.NewBuffer(nil)
	buf.WriteByte('0')
	buf.Write(rule.CRLF)
	for _, field := range cw.trailers {
		buf.Write(field.Text())
		buf.Write(rule.CRLF)
	}
	buf.Write(rule.CRLF)

	if _, err := cw.w.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, "writing last chunk")
	}
	return nil
}
