package bytesutil

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

var ErrTooLong = errors.New("length exceeds limit")

// ReadUntil reads from r until delim. The output will include delim.
//
// If limit is not zero and more than limit bytes are read without seeing
// delim, it returns [ErrTooLong].
// A stream ending before any byte was read yields [io.EOF]; ending in the
// middle yields [io.ErrUnexpectedEOF].
func ReadUntil(r *bufio.Reader, delim []byte, limit uint) ([]byte, error) {
	last := delim[len(delim)-1]
	buf := bytes.NewBuffer(nil)
	for {
		b, err := r.ReadSlice(last)
		buf.Write(b)

		if limit > 0 && uint(buf.Len()) > limit {
			return nil, ErrTooLong
		}

		switch {
		case err == nil:
			if bytes.HasSuffix(buf.Bytes(), delim) {
				return buf.Bytes(), nil
			}
		case errors.Is(err, bufio.ErrBufferFull):
			// Line is longer than the bufio buffer, keep going.
		case err == io.EOF:
			if buf.Len() == 0 {
				return nil, io.EOF
			}
			return nil, io.ErrUnexpectedEOF
		default:
			return nil, err
		}
	}
}
