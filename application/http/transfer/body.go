package transfer

import (
	"io"

	"http-client/application/http"
	"http-client/application/http/fault"

	"github.com/pkg/errors"
)

// NewBodyReader returns a reader yielding exactly the body bytes under framing.
// md must be positioned at the first byte after the header section.
//
// For content-length and chunked framing, md is never read past the end of the body.
func NewBodyReader(md *http.MessageDecoder, framing Framing) io.Reader {
	switch framing.Mode {
	case ModeChunked:
		return NewChunkedReader(md)
	case ModeCloseDelimited:
		return &closeDelimitedReader{r: md.Reader()}
	}
	return &contentLengthReader{r: md.Reader(), remain: framing.Length}
}

type contentLengthReader struct {
	r      io.Reader
	remain uint64
	err    error
}

func (lr *contentLengthReader) Read(p []byte) (int, error) {
	if lr.err != nil {
		return 0, lr.err
	}
	if lr.remain == 0 {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	if uint64(len(p)) > lr.remain {
		p = p[:lr.remain]
	}

	n, err := lr.r.Read(p)
	lr.remain -= uint64(n)

	switch {
	case err == nil:
	case err == io.EOF:
		if lr.remain > 0 {
			lr.err = fault.InvalidResponse(
				fault.ResponseContentLength,
				errors.Wrapf(io.ErrUnexpectedEOF, "%d bytes missing", lr.remain),
			)
		}
	default:
		lr.err = fault.IO(err)
	}

	if lr.err != nil && n == 0 {
		return 0, lr.err
	}
	return n, nil
}

type closeDelimitedReader struct{ r io.Reader }

func (cr *closeDelimitedReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if err != nil && err != io.EOF {
		return n, fault.IO(err)
	}
	return n, err
}
